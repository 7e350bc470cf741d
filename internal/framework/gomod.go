package framework

import (
	"fmt"
	"os"

	"golang.org/x/mod/modfile"
)

// pinModule rewrites the require line for module in the go.mod at path.
func pinModule(path, module, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	required := false
	for _, r := range f.Require {
		if r.Mod.Path == module {
			required = true
			break
		}
	}
	if !required {
		return fmt.Errorf("%w: %s in %s", ErrModuleNotRequired, module, path)
	}

	if err := f.AddRequire(module, version); err != nil {
		return fmt.Errorf("failed to pin %s@%s: %w", module, version, err)
	}
	f.Cleanup()

	out, err := f.Format()
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

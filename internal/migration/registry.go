package migration

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// legacySignature matches the parameter list of the v1.0.0 Process method.
const legacySignature = `(\s*\w+ context\.Context,\s*\w+ string,\s*\w+ map\[string\](?:any|interface\{\})\s*)`

// Builtin returns the migrations shipped with the framework.
func Builtin() []Migration {
	return []Migration{
		{
			From: "1.0.0",
			To:   "1.1.0",
			BreakingChanges: []string{
				"Renamed Processor.Process() to Processor.ProcessMessage()",
				"ProcessMessage() accepts optional user id and conversation id (opts ...fwk.MessageOption)",
			},
			Steps: []Step{
				{
					Name:        "update_process_method",
					Description: "Rename Process() to ProcessMessage()",
					FilePattern: defaultFilePattern,
					Search:      `^func \(([^)]*)\) Process\(` + legacySignature + `\)`,
					Replace:     `func (${1}) ProcessMessage(${2})`,
					Required:    true,
				},
				{
					Name:        "add_message_options",
					Description: "Add variadic message options to ProcessMessage()",
					FilePattern: defaultFilePattern,
					Search:      `^(func \([^)]*\) ProcessMessage\(` + legacySignature + `)\)`,
					Replace:     `${1}, opts ...fwk.MessageOption)`,
					Required:    true,
				},
				{
					Name:        "update_legacy_entrypoint",
					Description: "Replace fwk.RunLegacy() with fwk.Run()",
					FilePattern: defaultFilePattern,
					Search:      `\bfwk\.RunLegacy\(`,
					Replace:     `fwk.Run(`,
				},
				{
					Name:        "drop_legacy_adapter",
					Description: "Unwrap fwk.AdaptLegacy()",
					FilePattern: defaultFilePattern,
					Search:      `\bfwk\.AdaptLegacy\(([^()]*(?:\([^()]*\)[^()]*)*)\)`,
					Replace:     `${1}`,
				},
			},
		},
		{
			From: "1.1.0",
			To:   "1.2.0",
			BreakingChanges: []string{
				"Framework self-update capabilities added",
				"New endpoints /fwk/* available automatically",
			},
			Changelog: "Added self-update system with /fwk/* endpoints. No code changes required for existing agents.",
		},
		{
			From: "1.2.0",
			To:   "1.3.0",
			BreakingChanges: []string{
				"AgentConfig.Port is now AgentConfig.ServerPort",
				"New required field AgentConfig.AgentType",
			},
			Steps: []Step{
				{
					Name:        "rename_port_config",
					Description: "Rename Port to ServerPort in AgentConfig",
					FilePattern: defaultFilePattern,
					Search:      `(AgentConfig\{[^}]*?)\bPort:(\s*)(\d+)`,
					Replace:     `${1}ServerPort:${2}${3}`,
					Required:    true,
				},
				{
					Name:        "add_agent_type",
					Description: "Add required AgentType field",
					FilePattern: defaultFilePattern,
					Search:      `(AgentConfig\{[^}]*,)(\s*)\}`,
					Replace:     "${1}${2}\tAgentType: \"conversational\",${2}}",
					Required:    true,
				},
			},
		},
	}
}

type migrationFile struct {
	Migrations []Migration `yaml:"migrations"`
}

// LoadFile reads extra migrations from a YAML file. A missing file is not an
// error.
func LoadFile(path string) ([]Migration, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations file %s: %w", path, err)
	}

	var file migrationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse migrations file %s: %w", path, err)
	}
	return file.Migrations, nil
}

package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// EchoProcessor repeats the message back with a few facts about it.
type EchoProcessor struct {
	Name string
}

func (e EchoProcessor) ProcessMessage(_ context.Context, message string, msgContext map[string]any, opts ...MessageOption) (string, error) {
	meta := ResolveMessageOptions(opts...)

	parts := []string{
		fmt.Sprintf("Hello! I'm %s.", e.Name),
		fmt.Sprintf("You said: '%s'", message),
		fmt.Sprintf("Message length: %d characters", utf8.RuneCountInString(message)),
	}

	if len(msgContext) > 0 {
		keys := make([]string, 0, len(msgContext))
		for k := range msgContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, fmt.Sprintf("Context keys: [%s]", strings.Join(keys, ", ")))
	}

	if meta.UserID != nil && *meta.UserID != "" {
		parts = append(parts, "User ID: "+*meta.UserID)
	}

	return strings.Join(parts, " | "), nil
}

package commands

import (
	"strings"

	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/pkg/interfaces"
)

// CommandLogger scopes the commands logger of provider to one command group.
// An empty group is logged as "core".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":     "command",
		"command_group": group,
	})
}

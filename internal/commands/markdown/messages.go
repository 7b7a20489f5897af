package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	importMessageType = "manual.markdown.import"
	exportMessageType = "manual.markdown.export"
)

var directoryRequired = validation.By(func(value any) error {
	if dir, _ := value.(string); strings.TrimSpace(dir) == "" {
		return validation.NewError("manual.markdown.directory_required", "directory is required")
	}
	return nil
})

// ImportMarkdownCommand imports a directory of markdown files into the
// manual.
type ImportMarkdownCommand struct {
	Directory string `json:"directory"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportMarkdownCommand) Type() string { return importMessageType }

// Validate implements command.Message.
func (cmd ImportMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, directoryRequired),
	)
}

// ExportMarkdownCommand writes the manual to a directory of markdown files.
type ExportMarkdownCommand struct {
	Directory string `json:"directory"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ExportMarkdownCommand) Type() string { return exportMessageType }

// Validate implements command.Message.
func (cmd ExportMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, directoryRequired),
	)
}

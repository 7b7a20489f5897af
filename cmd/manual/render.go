package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	manual "github.com/goliatone/go-manual"
	"github.com/spf13/cobra"
)

func (a *app) renderCommand() *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render manual content from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if len(args) == 1 && args[0] != "-" {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			out := manual.Render(string(raw))
			if asHTML {
				fmt.Fprintln(cmd.OutOrStdout(), out.Markup())
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "print display markup instead of JSON")
	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-manual/internal/runtimeconfig"
	"github.com/spf13/cobra"
)

var errMemoryStorage = errors.New("migrate needs a sql storage driver")

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver := runtimeconfig.NormalizeDriver(a.cfg.Storage.Driver)
			if driver == runtimeconfig.DriverMemory {
				return errMemoryStorage
			}
			// Building the module applies pending migrations.
			module, _, err := a.module(cmd.Context())
			if err != nil {
				return err
			}
			defer module.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", driver)
			return nil
		},
	}
}

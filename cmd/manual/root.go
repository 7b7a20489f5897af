package main

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	manual "github.com/goliatone/go-manual"
	internalcommands "github.com/goliatone/go-manual/internal/commands"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	cfg        manual.Config
	build      func(ctx context.Context, cfg manual.Config) (*manual.Module, error)
}

func newRootCommand() *cobra.Command {
	a := &app{build: func(ctx context.Context, cfg manual.Config) (*manual.Module, error) {
		return manual.NewWithContext(ctx, cfg)
	}}

	root := &cobra.Command{
		Use:           "manual",
		Short:         "Serve and maintain a product manual",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./manual.yaml)")

	root.AddCommand(
		a.serveCommand(),
		a.migrateCommand(),
		a.importCommand(),
		a.exportCommand(),
		a.tokenCommand(),
		a.renderCommand(),
		a.cleanupCommand(),
	)
	return root
}

// module builds the runtime for one command invocation.
func (a *app) module(ctx context.Context) (*manual.Module, interfaces.Logger, error) {
	module, err := a.build(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	logger := internalcommands.CommandLogger(module.Container().LoggerProvider(), "cli")
	return module, logger, nil
}

// dispatch routes msg through the command dispatcher to handler.
func dispatch[T command.Message](ctx context.Context, handler command.Commander[T], msg T) error {
	sub := dispatcher.SubscribeCommand(handler)
	defer sub.Unsubscribe()
	return dispatcher.Dispatch(ctx, msg)
}

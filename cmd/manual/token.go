package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-manual/internal/users"
	"github.com/spf13/cobra"
)

var errOpenIDRequired = errors.New("--open-id is required")

func (a *app) tokenCommand() *cobra.Command {
	var openID, name, email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create or update a user and print a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			openID = strings.TrimSpace(openID)
			if openID == "" {
				return errOpenIDRequired
			}
			module, _, err := a.module(cmd.Context())
			if err != nil {
				return err
			}
			defer module.Close()

			input := users.UpsertInput{OpenID: openID}
			if name != "" {
				input.Name = &name
			}
			if email != "" {
				input.Email = &email
			}
			user, err := module.Users().Upsert(cmd.Context(), input)
			if err != nil {
				return err
			}
			token, err := module.Tokens().Issue(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&openID, "open-id", "", "identity provider subject of the user")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

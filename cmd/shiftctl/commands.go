package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"helping-hands/shiftdesk/internal/auth"
	"helping-hands/shiftdesk/internal/db"
	"helping-hands/shiftdesk/internal/db/repositories"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := db.Migrate(cmd.Context(), app.orm)
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create sample users and shifts (safe to re-run)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := db.Migrate(cmd.Context(), app.orm); err != nil {
				return err
			}
			res, err := db.Seed(cmd.Context(), app.orm)
			if err != nil {
				return err
			}

			fmt.Printf("Created %d user(s) and %d shift(s)\n\n", res.Users, res.Shifts)
			for _, u := range db.SeedUsers {
				fmt.Printf("  %-10s | password: %-13s | role: %s\n", u.Username, u.Password, u.Role)
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Mint a bearer token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			user, err := repositories.NewUserRepositoryGORM(app.orm).GetByUsername(cmd.Context(), username)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("user %q does not exist", username)
				}
				return err
			}

			signer := auth.NewTokenSigner([]byte(app.cfg.Auth.JWTSecret), app.cfg.Auth.TokenTTL)
			token, id, err := signer.Issue(user.Username)
			if err != nil {
				return err
			}

			fmt.Printf("# %s (%s), token id %s, valid for %s\n", user.Username, user.Role, id, app.cfg.Auth.TokenTTL)
			fmt.Println(token)
			return nil
		},
	}
}

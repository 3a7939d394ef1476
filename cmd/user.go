package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/supplier-gate/internal/auth"
	"github.com/example/supplier-gate/internal/config"
	"github.com/example/supplier-gate/internal/db"
	"github.com/example/supplier-gate/internal/migrate"
	"github.com/example/supplier-gate/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff logins",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var supplier, username, password string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a staff login in the credential sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			st := store.NewPostgres(d)
			authStore := auth.NewStore(st, cfg.CookieHashKey, cfg.CookieBlockKey)
			if err := authStore.SeedUser(ctx, supplier, username, password); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created user %q for %q\n", username, supplier)
			return nil
		},
	}

	c.Flags().StringVar(&supplier, "supplier", "", "supplier name shown on the board")
	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}

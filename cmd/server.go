package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/supplier-gate/internal/auth"
	"github.com/example/supplier-gate/internal/checkin"
	"github.com/example/supplier-gate/internal/config"
	"github.com/example/supplier-gate/internal/db"
	"github.com/example/supplier-gate/internal/migrate"
	"github.com/example/supplier-gate/internal/store"
	"github.com/example/supplier-gate/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool
	var storeDriver string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the check-in web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			st, cleanup, err := openStore(ctx, cfg, storeDriver, migrateUp)
			if err != nil {
				return err
			}
			defer cleanup()

			authStore := auth.NewStore(st, cfg.CookieHashKey, cfg.CookieBlockKey)
			svc := &checkin.Service{Store: st, Clock: checkin.SystemClock{}}

			ws := &web.Server{Auth: authStore, Checkin: svc, BaseURL: cfg.BaseURL}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().StringVar(&storeDriver, "store", "postgres", "dataset store: postgres or memory")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

// openStore wires the snapshot store. memory is for local demos only: the
// dataset starts empty and dies with the process.
func openStore(ctx context.Context, cfg config.Config, driver string, migrateUp bool) (store.Store, func(), error) {
	switch driver {
	case "memory":
		return store.NewMemory(store.Snapshot{}), func() {}, nil
	case "postgres":
		d, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := d.Ping(ctx); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		if migrateUp {
			if err := migrate.Up(ctx, d); err != nil {
				d.Close()
				return nil, nil, err
			}
		}
		return store.NewPostgres(d), d.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/sleepwatch/internal/backup"
	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/config"
)

type InitCmd struct {
	Force bool `help:"Delete the existing local state before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && !config.IsPostgres(ctx.Store.GetConfigPath()) {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			snap, err := backup.NewManager(dbPath).Create()
			if err != nil {
				return fmt.Errorf("failed to snapshot existing database: %w", err)
			}
			ctx.Printf("Saved a snapshot of the existing database to: %s\n", snap)
			// Close first so the file is not locked
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized sleepwatch storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

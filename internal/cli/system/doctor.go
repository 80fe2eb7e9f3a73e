package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/client"
	"github.com/julianstephens/sleepwatch/internal/constants"
	"github.com/julianstephens/sleepwatch/internal/migration"
)

// migratable is implemented by the database-backed stores.
type migratable interface {
	Runner() (*migration.Runner, error)
}

type DoctorCmd struct {
	Offline bool `help:"Skip the appliance connectivity check."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	check := func(name string, err error) {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			return
		}
		ctx.Printf("✓ %s: OK\n", name)
	}

	storeErr := checkStoreReachable(ctx)
	check("Local state reachable", storeErr)
	if storeErr == nil {
		check("Schema version", checkSchemaVersion(ctx))
		check("Migrations complete", checkMigrationsComplete(ctx))
	} else {
		ctx.Println("⊘ Schema version: SKIPPED (local state not reachable)")
		ctx.Println("⊘ Migrations complete: SKIPPED (local state not reachable)")
	}

	check("Configuration", ctx.Config.Validate())
	check("Clock/timezone", checkClockTimezone(ctx))

	if cmd.Offline {
		ctx.Println("⊘ Appliance reachable: SKIPPED (--offline)")
	} else {
		check("Appliance reachable", checkAppliance(ctx))
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load local state: %w", err)
	}
	if _, _, err := ctx.Store.Get("doctor-probe"); err != nil {
		return fmt.Errorf("failed to query local state: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migratable)
	if !ok {
		return nil
	}
	runner, err := m.Runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migratable)
	if !ok {
		return nil
	}
	runner, err := m.Runner()
	if err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(pending) > 0 {
		return fmt.Errorf("%d pending migration(s); run '%s init'", len(pending), constants.AppName)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	loc, err := ctx.Config.Location()
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", ctx.Config.Timezone, err)
	}
	now := time.Now().In(loc)
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkAppliance(ctx *cli.Context) error {
	remote := ctx.Remote
	if remote == nil {
		c, err := client.New(client.Config{BaseURL: ctx.Config.BaseURL, Timeout: ctx.Config.Timeout})
		if err != nil {
			return err
		}
		remote = c
	}
	if _, err := remote.FetchLatestSensors(context.Background()); err != nil {
		return fmt.Errorf("%s: %w", ctx.Config.BaseURL, err)
	}
	return nil
}

package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/sleepwatch/internal/cli"
	"github.com/julianstephens/sleepwatch/internal/cli/appliance"
	"github.com/julianstephens/sleepwatch/internal/cli/system"
	"github.com/julianstephens/sleepwatch/internal/config"
	"github.com/julianstephens/sleepwatch/internal/constants"
	apperrors "github.com/julianstephens/sleepwatch/internal/errors"
	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/telemetry"
)

var CLI struct {
	Version      kong.VersionFlag
	Store        string        `help:"SQLite path, PostgreSQL connection string, or 'keyring'. PostgreSQL credentials must NOT be embedded in the connection string." env:"SLEEPWATCH_STORE"`
	BaseURL      string        `help:"Appliance gateway address." name:"base-url" env:"SLEEPWATCH_BASE_URL"`
	Timeout      time.Duration `help:"Request timeout." env:"SLEEPWATCH_TIMEOUT"`
	Timezone     string        `help:"Timezone that decides which day is today (IANA name or Local)." env:"SLEEPWATCH_TIMEZONE"`
	MQTTBroker   string        `help:"MQTT broker for instant alarm notices (e.g. tcp://10.147.19.211:1883)." name:"mqtt-broker" env:"SLEEPWATCH_MQTT_BROKER"`
	OTLPEndpoint string        `help:"OTLP HTTP endpoint for request traces." name:"otlp-endpoint" env:"SLEEPWATCH_OTLP_ENDPOINT"`
	Ephemeral    bool          `help:"Keep local state in memory only."`
	Debug        bool          `help:"Enable debug logging to stderr." env:"SLEEPWATCH_DEBUG"`

	Init    system.InitCmd       `cmd:"" help:"Initialize local state storage."`
	Tui     system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Status  appliance.StatusCmd  `cmd:"" help:"Show sensors, alarm and today's summary."`
	Sensors appliance.SensorsCmd `cmd:"" help:"Show the latest bedroom reading."`
	Day     appliance.DayCmd     `cmd:"" help:"Show the summary for a day."`
	Rate    appliance.RateCmd    `cmd:"" help:"Rate last night's sleep (0-10)."`
	Alarm   appliance.AlarmCmd   `cmd:"" help:"Manage the alarm."`
	Watch   system.WatchCmd      `cmd:"" help:"Refresh periodically and print changes."`
	Doctor  system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Keyring system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Backup  system.BackupCmd     `cmd:"" help:"List, create or restore snapshots of the local state."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Companion client for the smart sleep alarm appliance"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := loadConfig()
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, Level: cfg.LogLevel, ConfigDir: cfg.ConfigDir()}); err != nil {
		apperrors.Fatal(err)
	}

	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.OTLPEndpoint, constants.AppName)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	store, err := cli.OpenStore(cfg.StorePath, CLI.Ephemeral)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	// these manage storage themselves
	switch command(ctx) {
	case "init", "keyring", "doctor", "backup":
	default:
		if err := cli.LoadStore(store); err != nil {
			apperrors.Fatal(err)
		}
	}

	appCtx := &cli.Context{
		Config: cfg,
		Store:  store,
		Out:    os.Stdout,
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("command failed", "command", ctx.Command(), "error", err)
		apperrors.Fatal(err)
	}
}

// command returns the top-level command name, e.g. "alarm" for "alarm set".
func command(ctx *kong.Context) string {
	fields := strings.Fields(ctx.Command())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// loadConfig layers flags over the environment and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if CLI.Store != "" {
		cfg.StorePath = CLI.Store
	}
	if CLI.BaseURL != "" {
		cfg.BaseURL = CLI.BaseURL
	}
	if CLI.Timeout > 0 {
		cfg.Timeout = CLI.Timeout
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.MQTTBroker != "" {
		cfg.MQTTBroker = CLI.MQTTBroker
	}
	if CLI.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = CLI.OTLPEndpoint
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

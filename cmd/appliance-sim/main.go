package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/sleepwatch/internal/config"
	"github.com/julianstephens/sleepwatch/internal/constants"
	apperrors "github.com/julianstephens/sleepwatch/internal/errors"
	"github.com/julianstephens/sleepwatch/internal/logger"
	"github.com/julianstephens/sleepwatch/internal/mqtt"
	"github.com/julianstephens/sleepwatch/internal/simulator"
	"github.com/julianstephens/sleepwatch/internal/telemetry"
)

var CLI struct {
	Version      kong.VersionFlag
	Addr         string `help:"Listen address." env:"SLEEPWATCH_SIM_ADDR" default:"${sim_addr}"`
	MQTTBroker   string `help:"Broker to publish alarm events to (e.g. tcp://localhost:1883)." env:"SLEEPWATCH_MQTT_BROKER"`
	OTLPEndpoint string `help:"OTLP HTTP endpoint for traces." env:"SLEEPWATCH_OTLP_ENDPOINT"`
	Timezone     string `help:"Timezone used to decide which day is today." env:"SLEEPWATCH_TIMEZONE" default:"${timezone}"`
	SeedDays     int    `help:"Days of history to generate." default:"${seed_days}"`
	Seed         uint64 `help:"Random seed for generated history (0 = random)."`
	Debug        bool   `help:"Log to stderr at debug level." env:"SLEEPWATCH_DEBUG"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("appliance-sim"),
		kong.Description("Simulated sleep appliance gateway for local development"),
		kong.UsageOnError(),
		kong.Vars{
			"version":   constants.Version,
			"sim_addr":  constants.DefaultSimAddr,
			"timezone":  constants.DefaultTimezone,
			"seed_days": strconv.Itoa(constants.SimSeedDays),
		},
	)

	if err := run(); err != nil {
		apperrors.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Timezone = CLI.Timezone
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, Level: cfg.LogLevel, ConfigDir: cfg.ConfigDir()}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, CLI.OTLPEndpoint, "appliance-sim")
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	opts := []simulator.Option{simulator.WithLocation(loc)}
	if CLI.Seed != 0 {
		opts = append(opts, simulator.WithSeed(CLI.Seed))
	}
	if CLI.MQTTBroker != "" {
		pub, err := mqtt.NewRealClient(CLI.MQTTBroker, constants.AppName+"-sim")
		if err != nil {
			return err
		}
		defer pub.Close()
		opts = append(opts, simulator.WithPublisher(pub))
	}

	sim := simulator.New(CLI.SeedDays, opts...)
	defer sim.Close()

	srv := &http.Server{
		Addr:              CLI.Addr,
		Handler:           sim.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("appliance simulator listening", "addr", CLI.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

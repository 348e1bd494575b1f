// mpx-bridge polls a Liebert MPX power distribution unit and mirrors its
// state onto MQTT.
//
// Every PDU, branch and receptacle value is published as a plain-text
// payload under <prefix>/pdu-N/branch-N/receptacle-N/<group>/<field>.
// Receptacles are switched by publishing enable, disable, identify or
// set-label <name> to <prefix>/pdu-N/branch-N/receptacle-N/control.
//
// Usage:
//
//	mpxbridge [config.yaml]
//	mpxbridge journal [-config config.yaml] [-address 1.2.3] [-limit 50]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/mpx-bridge/migrations"

	"github.com/nerrad567/mpx-bridge/internal/audit"
	"github.com/nerrad567/mpx-bridge/internal/bridge"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/config"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/database"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/systemd"
	"github.com/nerrad567/mpx-bridge/internal/mpx"
	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// discoveryTimeout bounds the initial receptacle listing.
const discoveryTimeout = 30 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "journal" {
		err = runJournal(ctx, os.Args[2:], os.Stdout)
	} else {
		err = run(ctx, getConfigPath(os.Args[1:]))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the bridge and blocks until ctx is cancelled or the scheduler
// hits a fatal fault.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting mpx-bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"pdu", cfg.PDU.Address,
		"prefix", cfg.MQTT.Prefix,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	device, err := mpx.New(deviceConfig(cfg))
	if err != nil {
		return fmt.Errorf("creating PDU client: %w", err)
	}

	receptacles, err := discover(ctx, device)
	if err != nil {
		return err
	}
	log.Info("receptacles discovered", "count", len(receptacles))

	// Optional sinks
	var telemetry bridge.Telemetry
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		telemetry = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	var journal bridge.Journal
	var db *database.DB
	if cfg.Journal.Enabled {
		db, err = openJournal(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing journal")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		journal = audit.NewRecorder(audit.NewSQLiteRepository(db.DB))
		schema := ""
		if status, statusErr := db.Status(ctx); statusErr == nil {
			schema = status.Current()
		}
		log.Info("journal opened", "path", cfg.Journal.Path, "schema", schema)
	} else {
		log.Info("journal disabled")
	}

	if err := healthCheck(ctx, mqttClient, db, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	registry := bridge.NewRegistry(receptacles, time.Now())
	inbox := bridge.NewInbox(cfg.Bridge.CommandQueueSize)

	controlTopic := mqttClient.Topics().ReceptacleControl()
	if err := mqttClient.Subscribe(controlTopic, 0, inbox.Handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", controlTopic, err)
	}

	notifier := systemd.New(log.With("component", "systemd"))
	if wd := systemd.WatchdogInterval(); wd > 0 && wd < 2*bridge.LivenessCadence {
		log.Warn("systemd watchdog shorter than liveness cadence", "watchdog", wd, "cadence", bridge.LivenessCadence)
	}

	scheduler, err := bridge.NewScheduler(bridge.Options{
		Device:        device,
		Publisher:     mqttClient,
		Notifier:      notifier,
		Registry:      registry,
		Inbox:         inbox,
		Telemetry:     telemetry,
		Journal:       journal,
		Prefix:        mqttClient.Topics().Prefix,
		QoS:           byte(cfg.MQTT.QoS),
		AvoidRetained: cfg.MQTT.AvoidRetained,
		Logger:        log.With("component", "scheduler"),
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	if interval := cfg.HealthInterval(); interval > 0 {
		health := bridge.NewHealthReporter(bridge.HealthReporterConfig{
			Prefix:    mqttClient.Topics().Prefix,
			Version:   version,
			Interval:  interval,
			QoS:       byte(cfg.MQTT.QoS),
			Publisher: mqttClient,
			Source:    scheduler,
			Telemetry: telemetry,
			Logger:    log.With("component", "health"),
		})
		health.Start(ctx)
		defer health.Stop()
	}

	log.Info("initialisation complete", "tasks", registry.Len())

	runErr := scheduler.Run(ctx)
	notifier.Stopping()
	if runErr != nil {
		log.Error("scheduler failed", "error", runErr)
		return fmt.Errorf("scheduler: %w", runErr)
	}

	log.Info("mpx-bridge stopped")
	return nil
}

// getConfigPath returns the first positional argument, MPXBRIDGE_CONFIG,
// or the default path, in that order.
func getConfigPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if path := os.Getenv("MPXBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// deviceConfig maps the pdu section of config.yaml onto the card client.
func deviceConfig(cfg *config.Config) mpx.Config {
	return mpx.Config{
		Address:     cfg.PDU.Address,
		Scheme:      cfg.PDU.Scheme,
		Username:    cfg.PDU.Username,
		Password:    cfg.PDU.Password,
		Timeout:     cfg.PDUTimeout(),
		RateLimit:   cfg.PDU.RateLimit,
		InsecureTLS: cfg.PDU.InsecureTLS,
	}
}

// discover lists the card's receptacles. An empty listing is an error:
// there would be nothing to poll.
func discover(ctx context.Context, device pdu.Client) ([]pdu.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	receptacles, err := device.Receptacles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pdu.ErrNoReceptacles, err)
	}
	if len(receptacles) == 0 {
		return nil, pdu.ErrNoReceptacles
	}
	return receptacles, nil
}

// openJournal opens the SQLite journal and applies migrations.
func openJournal(ctx context.Context, cfg config.JournalConfig) (*database.DB, error) {
	db, err := database.Open(database.ConfigFromJournal(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	return db, nil
}

// healthCheck verifies the connections the bridge depends on. db and
// influxClient may be nil when disabled.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, db *database.DB, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

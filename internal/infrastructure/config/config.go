package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the MPX bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	PDU      PDUConfig      `yaml:"pdu"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Journal  JournalConfig  `yaml:"journal"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keep_alive"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// Prefix is the root of every topic the bridge publishes or subscribes to.
	Prefix string `yaml:"prefix"`

	// AvoidRetained clears the retain flag on every value message.
	AvoidRetained bool `yaml:"avoid_retained"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// PDUConfig contains the management card connection settings.
type PDUConfig struct {
	Address     string  `yaml:"address"`
	Scheme      string  `yaml:"scheme"`
	Username    string  `yaml:"username"`
	Password    string  `yaml:"password"`
	Timeout     int     `yaml:"timeout"`
	RateLimit   float64 `yaml:"rate_limit"`
	InsecureTLS bool    `yaml:"insecure_tls"`
}

// BridgeConfig contains scheduler and health settings.
type BridgeConfig struct {
	CommandQueueSize int `yaml:"command_queue_size"`
	HealthInterval   int `yaml:"health_interval"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// JournalConfig contains the SQLite action journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MPXBRIDGE_SECTION_KEY
// For example: MPXBRIDGE_PDU_ADDRESS, MPXBRIDGE_MQTT_PASSWORD
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.ClientID == "" {
		cfg.MQTT.Broker.ClientID = "mpx-bridge-" + uuid.NewString()[:8]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 8883,
				TLS:  true,
			},
			QoS:       1,
			KeepAlive: 5,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Prefix: "liebert-mpx",
		},
		PDU: PDUConfig{
			Scheme:  "https",
			Timeout: 10,
		},
		Bridge: BridgeConfig{
			CommandQueueSize: 256,
			HealthInterval:   30,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Journal: JournalConfig{
			Path:        "./data/mpx-bridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("MPXBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MPXBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("MPXBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MPXBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("MPXBRIDGE_MQTT_PREFIX"); v != "" {
		cfg.MQTT.Prefix = v
	}

	// PDU
	if v := os.Getenv("MPXBRIDGE_PDU_ADDRESS"); v != "" {
		cfg.PDU.Address = v
	}
	if v := os.Getenv("MPXBRIDGE_PDU_USERNAME"); v != "" {
		cfg.PDU.Username = v
	}
	if v := os.Getenv("MPXBRIDGE_PDU_PASSWORD"); v != "" {
		cfg.PDU.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MPXBRIDGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Journal
	if v := os.Getenv("MPXBRIDGE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// Logging
	if v := os.Getenv("MPXBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// MQTT
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Prefix == "" {
		errs = append(errs, "mqtt.prefix is required")
	} else if strings.ContainsAny(c.MQTT.Prefix, "+#") || strings.HasSuffix(c.MQTT.Prefix, "/") {
		errs = append(errs, "mqtt.prefix must not contain wildcards or end with /")
	}

	// PDU
	if c.PDU.Address == "" {
		errs = append(errs, "pdu.address is required (set MPXBRIDGE_PDU_ADDRESS environment variable)")
	}
	if c.PDU.Scheme != "http" && c.PDU.Scheme != "https" {
		errs = append(errs, "pdu.scheme must be http or https")
	}
	if c.PDU.RateLimit < 0 {
		errs = append(errs, "pdu.rate_limit must not be negative")
	}

	// Bridge
	if c.Bridge.CommandQueueSize < 1 {
		errs = append(errs, "bridge.command_queue_size must be positive")
	}

	// Optional sinks
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PDUTimeout returns the device request timeout as a Duration.
func (c *Config) PDUTimeout() time.Duration {
	return time.Duration(c.PDU.Timeout) * time.Second
}

// HealthInterval returns the health report interval as a Duration.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.Bridge.HealthInterval) * time.Second
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/mpx-bridge/internal/audit"
	"github.com/nerrad567/mpx-bridge/internal/bridge"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/config"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/systemd"
	"github.com/nerrad567/mpx-bridge/internal/mpx"
	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// The concrete infrastructure types must satisfy the bridge's interfaces.
var (
	_ bridge.Publisher = (*mqtt.Client)(nil)
	_ bridge.Telemetry = (*influxdb.Client)(nil)
	_ bridge.Notifier  = (*systemd.Notifier)(nil)
	_ bridge.Journal   = (*audit.Recorder)(nil)
	_ pdu.Client       = (*mpx.Client)(nil)
)

func TestGetConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
		want string
	}{
		{"default", nil, "", "configs/config.yaml"},
		{"env", nil, "/etc/mpx-bridge/config.yaml", "/etc/mpx-bridge/config.yaml"},
		{"positional wins", []string{"local.yaml"}, "/etc/mpx-bridge/config.yaml", "local.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MPXBRIDGE_CONFIG", tt.env)
			if got := getConfigPath(tt.args); got != tt.want {
				t.Errorf("getConfigPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want loading config failure", err)
	}
}

func TestDeviceConfig(t *testing.T) {
	cfg := &config.Config{PDU: config.PDUConfig{
		Address:     "10.0.0.5",
		Scheme:      "http",
		Username:    "admin",
		Password:    "secret",
		Timeout:     7,
		RateLimit:   2.5,
		InsecureTLS: true,
	}}

	got := deviceConfig(cfg)
	want := mpx.Config{
		Address:     "10.0.0.5",
		Scheme:      "http",
		Username:    "admin",
		Password:    "secret",
		Timeout:     7 * time.Second,
		RateLimit:   2.5,
		InsecureTLS: true,
	}
	if got != want {
		t.Errorf("deviceConfig() = %+v, want %+v", got, want)
	}
}

// stubDevice implements only Receptacles; other methods panic.
type stubDevice struct {
	pdu.Client
	addrs []pdu.Address
	err   error
}

func (d stubDevice) Receptacles(context.Context) ([]pdu.Address, error) {
	return d.addrs, d.err
}

func TestDiscover(t *testing.T) {
	one := []pdu.Address{{PDU: 1, Branch: 1, Receptacle: 1}}

	tests := []struct {
		name    string
		device  stubDevice
		want    int
		wantErr bool
	}{
		{"found", stubDevice{addrs: one}, 1, false},
		{"empty", stubDevice{}, 0, true},
		{"card error", stubDevice{err: pdu.ErrDevice}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := discover(context.Background(), tt.device)
			if tt.wantErr {
				if !errors.Is(err, pdu.ErrNoReceptacles) {
					t.Errorf("discover() error = %v, want ErrNoReceptacles", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("discover() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("discover() = %v, want %d addresses", got, tt.want)
			}
		})
	}
}

func writeConfig(t *testing.T, journal string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "mpx-bridge-test"
    tls: false
pdu:
  address: "10.0.0.5"
` + journal
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	path := writeConfig(t, "journal:\n  enabled: true\n  path: \""+dbPath+"\"\n")
	ctx := context.Background()

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	db, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		t.Fatalf("openJournal() error = %v", err)
	}
	rec := audit.NewRecorder(audit.NewSQLiteRepository(db.DB))
	for _, addr := range []pdu.Address{{PDU: 1, Branch: 1, Receptacle: 1}, {PDU: 1, Branch: 1, Receptacle: 2}} {
		if err := rec.Record(ctx, bridge.JournalEntry{Action: "disable", Address: addr, Source: "event", Attempts: 1}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	db.Close()

	var out bytes.Buffer
	if err := runJournal(ctx, []string{"-config", path, "-address", "1.1.2"}, &out); err != nil {
		t.Fatalf("runJournal() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("output lines = %d, want 1: %q", len(lines), out.String())
	}
	var e audit.Entry
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Address != "1.1.2" || e.Action != "disable" {
		t.Errorf("entry = %+v", e)
	}
}

func TestRunJournal_Disabled(t *testing.T) {
	path := writeConfig(t, "")

	err := runJournal(context.Background(), []string{"-config", path}, &bytes.Buffer{})
	if !errors.Is(err, errJournalDisabled) {
		t.Errorf("runJournal() error = %v, want errJournalDisabled", err)
	}
}

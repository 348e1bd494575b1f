package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/nerrad567/mpx-bridge/internal/audit"
	"github.com/nerrad567/mpx-bridge/internal/infrastructure/config"
)

// errJournalDisabled is returned by the journal subcommand when the
// configuration has no journal to read.
var errJournalDisabled = errors.New("journal is disabled in configuration")

// runJournal prints recent journal entries as JSON lines, newest first.
func runJournal(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "path to YAML config")
	address := fs.String("address", "", "only entries for receptacle p.b.r")
	action := fs.String("action", "", "only entries for this action")
	source := fs.String("source", "", "only entries from mqtt or event")
	limit := fs.Int("limit", 50, "maximum entries to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		path = getConfigPath(nil)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Journal.Enabled {
		return errJournalDisabled
	}

	db, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Read-only use

	repo := audit.NewSQLiteRepository(db.DB)
	result, err := repo.List(ctx, audit.Filter{
		Action:  *action,
		Address: *address,
		Source:  *source,
		Limit:   *limit,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, e := range result.Entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

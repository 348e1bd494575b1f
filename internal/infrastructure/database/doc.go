// Package database provides the SQLite connection behind the bridge's
// action journal.
//
// The connection is limited to one open handle; WAL mode lets the journal
// subcommand read while the bridge writes. The file is created 0600.
//
// Usage:
//
//	db, err := database.Open(database.ConfigFromJournal(cfg.Journal))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are embedded .up.sql files named YYYYMMDD_HHMMSS_description
// and are applied forward only. The .down.sql beside each one is for
// operators rolling back by hand.
package database

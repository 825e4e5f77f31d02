package oui

import (
	"errors"
	"fmt"

	kouui "github.com/klauspost/oui"
)

// DB is a vendor table backed by a klauspost/oui database file.
type DB struct {
	db kouui.OuiDB
}

// OpenDB loads a klauspost/oui database (the IEEE oui.txt format).
func OpenDB(path string) (*DB, error) {
	db, err := kouui.OpenStaticFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OUI database: %w", err)
	}
	debugLog("OUI database loaded from %s", path)
	return &DB{db: db}, nil
}

// Vendor implements Table.
func (d *DB) Vendor(prefix string) (string, bool) {
	entry, err := d.db.Query(prefix + ":00:00:00")
	if err != nil {
		if !errors.Is(err, kouui.ErrNotFound) {
			debugLog("%s: OUI query failed: %v", prefix, err)
		}
		return "", false
	}
	if entry == nil {
		return "", false
	}
	return entry.Manufacturer, true
}

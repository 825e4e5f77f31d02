// Package oui maps MAC addresses to vendor names using the organizationally
// unique identifier (the first three octets).
//
// Lookups are pure: a Table is loaded once and then only read. Several
// tables can be chained in a Lookup; the first table that knows a prefix wins.
package oui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from OUI operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Table resolves a normalized prefix ("AA:BB:CC") to a vendor name.
type Table interface {
	Vendor(prefix string) (string, bool)
}

// Prefix returns the normalized vendor prefix of mac: the first three
// colon or dash separated octets, uppercased and zero-padded to two digits.
// The second return value is false when mac has fewer than three valid octets.
func Prefix(mac string) (string, bool) {
	mac = strings.ReplaceAll(strings.TrimSpace(mac), "-", ":")
	parts := strings.Split(mac, ":")
	if len(parts) < 3 {
		return "", false
	}
	out := make([]string, 3)
	for i := 0; i < 3; i++ {
		p := parts[i]
		if len(p) == 0 || len(p) > 2 || !isHex(p) {
			return "", false
		}
		if len(p) == 1 {
			p = "0" + p
		}
		out[i] = strings.ToUpper(p)
	}
	return strings.Join(out, ":"), true
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// Lookup chains vendor tables.
type Lookup struct {
	tables []Table
}

// New returns a Lookup consulting tables in order.
func New(tables ...Table) *Lookup {
	return &Lookup{tables: tables}
}

// Vendor returns the vendor registered for mac's prefix. An unknown or
// malformed prefix yields ("", false); it is not an error.
func (l *Lookup) Vendor(mac string) (string, bool) {
	prefix, ok := Prefix(mac)
	if !ok {
		return "", false
	}
	for _, t := range l.tables {
		if name, ok := t.Vendor(prefix); ok && name != "" {
			return name, true
		}
	}
	debugLog("%s: vendor not found", prefix)
	return "", false
}

// Open loads a vendor table from path. Files ending in .csv are read as the
// IEEE oui.csv export, anything else is opened as a klauspost/oui database.
func Open(path string) (*Lookup, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		m, err := OpenCSV(path)
		if err != nil {
			return nil, err
		}
		return New(m), nil
	}
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

var (
	defaultLookup *Lookup
	defaultOnce   sync.Once
	defaultErr    error
	defaultMu     sync.RWMutex

	// customDBPath allows setting a custom path for the vendor database
	customDBPath string
)

// SetDatabase sets a custom path for the vendor database file used by
// Default. Call it before the first lookup, or call Reload afterwards.
func SetDatabase(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("OUI database file not found: %s", path)
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	customDBPath = path
	defaultOnce = sync.Once{}
	defaultLookup = nil
	defaultErr = nil

	debugLog("Custom OUI database path set: %s", path)
	return nil
}

// GetDatabasePath returns the current database path (empty if using the embedded registry).
func GetDatabasePath() string {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return customDBPath
}

// Default returns the process-wide Lookup. It uses the database set with
// SetDatabase, falling back to the embedded registry.
func Default() (*Lookup, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultOnce.Do(func() {
		if customDBPath == "" {
			debugLog("Using embedded OUI registry")
			defaultLookup = New(Embedded{})
			return
		}
		debugLog("Loading OUI database from: %s", customDBPath)
		l, err := Open(customDBPath)
		if err != nil {
			defaultErr = err
			return
		}
		// Keep the embedded registry behind the custom file.
		l.tables = append(l.tables, Embedded{})
		defaultLookup = l
	})
	return defaultLookup, defaultErr
}

// Reload forces the default Lookup to be rebuilt on next use.
func Reload() error {
	defaultMu.Lock()
	defaultOnce = sync.Once{}
	defaultLookup = nil
	defaultErr = nil
	defaultMu.Unlock()

	debugLog("OUI database reload triggered")
	_, err := Default()
	return err
}

package oui

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Map is an in-memory vendor table keyed by normalized prefix.
type Map map[string]string

// NewMap builds a Map from prefix → vendor pairs, normalizing every key.
// Entries whose key is not a valid prefix are skipped.
func NewMap(entries map[string]string) Map {
	m := make(Map, len(entries))
	for k, v := range entries {
		if p, ok := Prefix(k); ok {
			m[p] = v
		}
	}
	return m
}

// Vendor implements Table.
func (m Map) Vendor(prefix string) (string, bool) {
	name, ok := m[prefix]
	return name, ok
}

// LoadCSV parses the IEEE MA-L registry export
// (Registry,Assignment,Organization Name,Organization Address).
// The header row and malformed rows are skipped.
func LoadCSV(r io.Reader) (Map, error) {
	m := make(Map, 40000)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read oui csv: %w", err)
		}
		if first {
			first = false
			if len(rec) > 1 && strings.EqualFold(strings.TrimSpace(rec[1]), "Assignment") {
				continue
			}
		}
		if len(rec) < 3 {
			continue
		}
		hex := strings.TrimSpace(rec[1])
		if len(hex) != 6 {
			continue
		}
		prefix, ok := Prefix(hex[0:2] + ":" + hex[2:4] + ":" + hex[4:6])
		if !ok {
			continue
		}
		m[prefix] = strings.TrimSpace(rec[2])
	}
	return m, nil
}

// OpenCSV reads a vendor table from an IEEE oui.csv file.
func OpenCSV(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open oui csv: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

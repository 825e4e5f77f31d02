package oui

import (
	"strings"

	eoui "github.com/endobit/oui"
)

// Embedded is the vendor registry compiled into github.com/endobit/oui.
// It needs no files and is the default table.
type Embedded struct{}

// Vendor implements Table.
func (Embedded) Vendor(prefix string) (string, bool) {
	name := eoui.Vendor(strings.ToLower(prefix) + ":00:00:00")
	return name, name != ""
}

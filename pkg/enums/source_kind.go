package enums

import "fmt"

// SourceKind identifies which ledger an order line item draws quantity from.
type SourceKind string

const (
	SourceKindCatalogLot      SourceKind = "catalog_lot"
	SourceKindInventoryRecord SourceKind = "inventory_record"
)

var validSourceKinds = []SourceKind{
	SourceKindCatalogLot,
	SourceKindInventoryRecord,
}

// String implements fmt.Stringer.
func (s SourceKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SourceKind.
func (s SourceKind) IsValid() bool {
	for _, candidate := range validSourceKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSourceKind converts raw input into a SourceKind.
func ParseSourceKind(value string) (SourceKind, error) {
	for _, candidate := range validSourceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid source kind %q", value)
}

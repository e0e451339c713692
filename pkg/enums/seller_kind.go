package enums

import "fmt"

// SellerKind distinguishes farmer-direct sales from store resales.
type SellerKind string

const (
	SellerKindFarmer SellerKind = "farmer"
	SellerKindStore  SellerKind = "store"
)

var validSellerKinds = []SellerKind{
	SellerKindFarmer,
	SellerKindStore,
}

// String implements fmt.Stringer.
func (s SellerKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellerKind.
func (s SellerKind) IsValid() bool {
	for _, candidate := range validSellerKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellerKind converts raw input into a SellerKind.
func ParseSellerKind(value string) (SellerKind, error) {
	for _, candidate := range validSellerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller kind %q", value)
}

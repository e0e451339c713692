package enums

import "fmt"

// ProduceCategory groups commodities for browsing and filtering.
type ProduceCategory string

const (
	ProduceCategoryGrains     ProduceCategory = "grains"
	ProduceCategoryVegetables ProduceCategory = "vegetables"
	ProduceCategoryFruits     ProduceCategory = "fruits"
	ProduceCategoryPulses     ProduceCategory = "pulses"
	ProduceCategorySpices     ProduceCategory = "spices"
	ProduceCategoryDairy      ProduceCategory = "dairy"
	ProduceCategoryOther      ProduceCategory = "other"
)

var validProduceCategories = []ProduceCategory{
	ProduceCategoryGrains,
	ProduceCategoryVegetables,
	ProduceCategoryFruits,
	ProduceCategoryPulses,
	ProduceCategorySpices,
	ProduceCategoryDairy,
	ProduceCategoryOther,
}

// String implements fmt.Stringer.
func (p ProduceCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProduceCategory.
func (p ProduceCategory) IsValid() bool {
	for _, candidate := range validProduceCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProduceCategory converts raw input into a ProduceCategory.
func ParseProduceCategory(value string) (ProduceCategory, error) {
	for _, candidate := range validProduceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid produce category %q", value)
}

// ProduceUnit is the unit of measure a lot is priced and sold in.
type ProduceUnit string

const (
	ProduceUnitKg      ProduceUnit = "kg"
	ProduceUnitQuintal ProduceUnit = "quintal"
	ProduceUnitTon     ProduceUnit = "ton"
	ProduceUnitLitre   ProduceUnit = "litre"
	ProduceUnitDozen   ProduceUnit = "dozen"
	ProduceUnitPiece   ProduceUnit = "piece"
)

var validProduceUnits = []ProduceUnit{
	ProduceUnitKg,
	ProduceUnitQuintal,
	ProduceUnitTon,
	ProduceUnitLitre,
	ProduceUnitDozen,
	ProduceUnitPiece,
}

// String implements fmt.Stringer.
func (p ProduceUnit) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProduceUnit.
func (p ProduceUnit) IsValid() bool {
	for _, candidate := range validProduceUnits {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProduceUnit converts raw input into a ProduceUnit.
func ParseProduceUnit(value string) (ProduceUnit, error) {
	for _, candidate := range validProduceUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid produce unit %q", value)
}

package transaction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PropertyType identifies which upstream trade feed produced a record
type PropertyType string

const (
	Apartment     PropertyType = "apartment"
	Commercial    PropertyType = "commercial"
	RowHouse      PropertyType = "row-house"
	DetachedHouse PropertyType = "detached-house"
	Factory       PropertyType = "factory"
	Land          PropertyType = "land"
)

// AllPropertyTypes lists every supported property type in display order
var AllPropertyTypes = []PropertyType{
	Apartment,
	Commercial,
	RowHouse,
	DetachedHouse,
	Factory,
	Land,
}

// ParsePropertyType converts a user-supplied tag into a PropertyType.
// A few aliases used by the feed documentation are accepted.
func ParsePropertyType(s string) (PropertyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apartment", "apt":
		return Apartment, nil
	case "commercial", "office", "commercial/office", "nrg":
		return Commercial, nil
	case "row-house", "rowhouse", "rh":
		return RowHouse, nil
	case "detached-house", "house", "sh":
		return DetachedHouse, nil
	case "factory", "industrial", "factory/industrial", "indu":
		return Factory, nil
	case "land":
		return Land, nil
	}
	return "", fmt.Errorf("unknown property type: %q", s)
}

// String returns the tag
func (p PropertyType) String() string {
	return string(p)
}

// HasStructure reports whether transactions of this type include a building
func (p PropertyType) HasStructure() bool {
	return p != Land
}

// RawRecord is one trade row as delivered by the feed: element tag -> text value
type RawRecord map[string]string

// CanonicalTransaction is a trade record normalized across all property types
type CanonicalTransaction struct {
	DealAmount       decimal.Decimal `json:"dealAmount"` // 만원
	DealYear         string          `json:"dealYear"`
	DealMonth        string          `json:"dealMonth"` // always two digits
	DealDay          string          `json:"dealDay"`   // always two digits
	Subdivision      string          `json:"dong"`
	LandArea         float64         `json:"landArea"`  // m²
	BuildArea        float64         `json:"buildArea"` // m²
	Parcel           string          `json:"jibun"`
	BuildingUse      string          `json:"buildingUse,omitempty"`
	LandCategory     string          `json:"jimok,omitempty"`
	Zoning           string          `json:"zoning,omitempty"`
	Floor            string          `json:"floor,omitempty"`
	ConstructionYear string          `json:"constructionYear,omitempty"`
	PropertyType     PropertyType    `json:"propertyType"`
}

// DealDate returns the deal date as YYYY-MM-DD
func (t CanonicalTransaction) DealDate() string {
	return t.DealYear + "-" + t.DealMonth + "-" + t.DealDay
}

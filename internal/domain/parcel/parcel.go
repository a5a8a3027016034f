// Package parcel derives the registry lookup key (district, subdivision, lot,
// sub-lot) from a canonical transaction.
package parcel

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// DefaultSubLot is used when a parcel string has no hyphen
const DefaultSubLot = "0"

// Key identifies a parcel for a building-registry lookup
type Key struct {
	DistrictCode    string // sigungu code, e.g. "11680"
	SubdivisionCode string // bjdong code, empty if the name could not be resolved
	Lot             string // bun
	SubLot          string // ji
}

// Resolvable reports whether the key is complete enough to query the registry
func (k Key) Resolvable() bool {
	return k.SubdivisionCode != "" && k.Lot != ""
}

// Lookup resolves subdivision names to codes within a single municipality
type Lookup interface {
	// Municipality returns the display name used in fallback addresses,
	// e.g. "서울특별시 강남구"
	Municipality() string
	// Resolve returns the subdivision code for an exact name
	Resolve(name string) (code string, ok bool)
}

// Split splits a parcel string on its first hyphen into lot and sub-lot
func Split(parcel string) (lot, subLot string) {
	parcel = strings.TrimSpace(parcel)
	if parcel == "" {
		return "", DefaultSubLot
	}

	parts := strings.Split(parcel, "-")
	lot = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "산"))
	if len(parts) > 1 {
		subLot = strings.TrimSpace(parts[1])
	}
	if subLot == "" {
		subLot = DefaultSubLot
	}
	return lot, subLot
}

// Resolve builds a Key for tx. An unresolvable subdivision leaves
// SubdivisionCode empty; it is not an error.
func Resolve(tx transaction.CanonicalTransaction, districtCode string, lookup Lookup) Key {
	lot, subLot := Split(tx.Parcel)
	key := Key{
		DistrictCode: districtCode,
		Lot:          lot,
		SubLot:       subLot,
	}
	if lookup != nil {
		if code, ok := lookup.Resolve(tx.Subdivision); ok {
			key.SubdivisionCode = code
		}
	}
	return key
}

// NormalizeName canonicalizes a subdivision name for comparison
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// StaticLookup is a map-backed Lookup
type StaticLookup struct {
	name  string
	codes map[string]string
}

// NewStaticLookup creates a lookup for one municipality from name -> code pairs
func NewStaticLookup(municipality string, codes map[string]string) *StaticLookup {
	normalized := make(map[string]string, len(codes))
	for name, code := range codes {
		normalized[NormalizeName(name)] = code
	}
	return &StaticLookup{name: municipality, codes: normalized}
}

// Municipality returns the municipality display name
func (s *StaticLookup) Municipality() string {
	return s.name
}

// Resolve returns the code for name
func (s *StaticLookup) Resolve(name string) (string, bool) {
	code, ok := s.codes[NormalizeName(name)]
	return code, ok
}

// Len returns the number of known subdivisions
func (s *StaticLookup) Len() int {
	return len(s.codes)
}

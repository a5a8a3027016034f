// Package transaction converts raw trade-feed rows into canonical transactions.
//
// Each property type publishes a differently shaped row: apartments report an
// exclusive-use area and a complex name, commercial buildings a gross floor area and
// a main use, land only a transacted area. Normalize folds all of them into one
// CanonicalTransaction so the matcher never sees feed-specific keys.
//
// Field names are accepted in both the Korean tags of the legacy RTMS service and the
// English tags of the current apis.data.go.kr service.
package transaction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedField is returned when a field is present but cannot be parsed
var ErrMalformedField = errors.New("malformed field")

// LandUseLabel is the building-use label given to land transactions
const LandUseLabel = "토지"

// Field aliases, tried in order. The first non-empty value wins.
var (
	dealAmountKeys   = []string{"거래금액", "dealAmount"}
	dealYearKeys     = []string{"년", "dealYear"}
	dealMonthKeys    = []string{"월", "dealMonth"}
	dealDayKeys      = []string{"일", "dealDay"}
	subdivisionKeys  = []string{"법정동", "umdNm"}
	parcelKeys       = []string{"지번", "jibun"}
	siteAreaKeys     = []string{"대지면적", "plottageAr"}
	siteRightsKeys   = []string{"대지권면적", "landAr"}
	landDealAreaKeys = []string{"거래면적", "dealArea"}
	grossFloorKeys   = []string{"연면적", "totalFloorAr"}
	exclusiveKeys    = []string{"전용면적", "excluUseAr"}
	buildingAreaKeys = []string{"건물면적", "buildingAr"}
	useKeys          = []string{"건물주용도", "buildingUse"}
	landCategoryKeys = []string{"지목", "jimok"}
	zoningKeys       = []string{"용도지역", "landUse"}
	floorKeys        = []string{"층", "floor"}
	buildYearKeys    = []string{"건축년도", "buildYear"}
)

// nameKeys are the property-type specific fallbacks for the building-use field
var nameKeys = map[PropertyType][]string{
	Apartment: {"아파트", "aptNm"},
	RowHouse:  {"연립다세대", "mhouseNm"},
}

// Normalize maps a raw feed row into a CanonicalTransaction.
//
// Missing fields degrade to defaults ("0" amount, 0 areas, empty strings). A field
// that is present but not numeric yields an error wrapping ErrMalformedField.
func Normalize(raw RawRecord, pt PropertyType) (CanonicalTransaction, error) {
	tx := CanonicalTransaction{
		DealYear:         raw.first(dealYearKeys...),
		DealMonth:        padTwo(raw.first(dealMonthKeys...)),
		DealDay:          padTwo(raw.first(dealDayKeys...)),
		Subdivision:      raw.first(subdivisionKeys...),
		Parcel:           raw.first(parcelKeys...),
		LandCategory:     raw.first(landCategoryKeys...),
		Zoning:           raw.first(zoningKeys...),
		Floor:            raw.first(floorKeys...),
		ConstructionYear: raw.first(buildYearKeys...),
		PropertyType:     pt,
	}

	amount, err := parseAmount(raw.first(dealAmountKeys...))
	if err != nil {
		return CanonicalTransaction{}, err
	}
	tx.DealAmount = amount

	if pt == Land {
		if tx.LandArea, err = raw.area(landDealAreaKeys); err != nil {
			return CanonicalTransaction{}, err
		}
		tx.BuildArea = 0
		tx.BuildingUse = LandUseLabel
		return tx, nil
	}

	if tx.LandArea, err = raw.area(siteAreaKeys, siteRightsKeys); err != nil {
		return CanonicalTransaction{}, err
	}
	if tx.BuildArea, err = raw.area(grossFloorKeys, exclusiveKeys, buildingAreaKeys); err != nil {
		return CanonicalTransaction{}, err
	}

	tx.BuildingUse = raw.first(useKeys...)
	if tx.BuildingUse == "" {
		tx.BuildingUse = raw.first(nameKeys[pt]...)
	}

	return tx, nil
}

// first returns the first non-empty trimmed value among keys
func (r RawRecord) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// area resolves an area from groups of aliases in priority order.
// Returns 0 if no group has a value.
func (r RawRecord) area(groups ...[]string) (float64, error) {
	for _, keys := range groups {
		v := r.first(keys...)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrMalformedField, keys[0], v)
		}
		if f < 0 {
			f = 0
		}
		return f, nil
	}
	return 0, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q", ErrMalformedField, dealAmountKeys[0], s)
	}
	return d, nil
}

func padTwo(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

package transaction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Commercial(t *testing.T) {
	raw := RawRecord{
		"거래금액":  " 125,000 ",
		"년":     "2024",
		"월":     "3",
		"일":     "7",
		"법정동":   " 역삼동 ",
		"대지면적":  "500.3",
		"연면적":   "1,203.5",
		"지번":    "123-45",
		"건물주용도": "업무",
		"용도지역":  "일반상업",
		"건축년도":  "1998",
	}

	tx, err := Normalize(raw, Commercial)

	require.NoError(t, err)
	assert.Equal(t, "125000", tx.DealAmount.String())
	assert.Equal(t, "2024", tx.DealYear)
	assert.Equal(t, "03", tx.DealMonth)
	assert.Equal(t, "07", tx.DealDay)
	assert.Equal(t, "역삼동", tx.Subdivision)
	assert.InDelta(t, 500.3, tx.LandArea, 0.0001)
	assert.InDelta(t, 1203.5, tx.BuildArea, 0.0001)
	assert.Equal(t, "123-45", tx.Parcel)
	assert.Equal(t, "업무", tx.BuildingUse)
	assert.Equal(t, "일반상업", tx.Zoning)
	assert.Equal(t, "1998", tx.ConstructionYear)
	assert.Equal(t, "2024-03-07", tx.DealDate())
}

func TestNormalize_MissingFieldsDefault(t *testing.T) {
	for _, pt := range AllPropertyTypes {
		t.Run(pt.String(), func(t *testing.T) {
			tx, err := Normalize(RawRecord{}, pt)

			require.NoError(t, err)
			assert.True(t, tx.DealAmount.IsZero())
			assert.Equal(t, "00", tx.DealMonth)
			assert.Equal(t, "00", tx.DealDay)
			assert.Equal(t, 0.0, tx.LandArea)
			assert.Equal(t, 0.0, tx.BuildArea)
		})
	}
}

func TestNormalize_SiteAreaFallsBackToSiteRights(t *testing.T) {
	tx, err := Normalize(RawRecord{"대지권면적": "33.1", "전용면적": "59.9"}, RowHouse)

	require.NoError(t, err)
	assert.InDelta(t, 33.1, tx.LandArea, 0.0001)
	assert.InDelta(t, 59.9, tx.BuildArea, 0.0001)
}

func TestNormalize_BuildingAreaPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRecord
		want float64
	}{
		{"gross floor first", RawRecord{"연면적": "100", "전용면적": "80", "건물면적": "60"}, 100},
		{"exclusive second", RawRecord{"전용면적": "80", "건물면적": "60"}, 80},
		{"building area third", RawRecord{"건물면적": "60"}, 60},
		{"none", RawRecord{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := Normalize(tt.raw, Factory)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tx.BuildArea)
		})
	}
}

func TestNormalize_Land(t *testing.T) {
	raw := RawRecord{
		"거래금액": "30,000",
		"거래면적": "661.2",
		"대지면적": "999",
		"연면적":  "500",
		"지목":   "대",
	}

	tx, err := Normalize(raw, Land)

	require.NoError(t, err)
	assert.InDelta(t, 661.2, tx.LandArea, 0.0001)
	assert.Equal(t, 0.0, tx.BuildArea)
	assert.Equal(t, LandUseLabel, tx.BuildingUse)
	assert.Equal(t, "대", tx.LandCategory)
}

func TestNormalize_BuildingUseFallsBackToName(t *testing.T) {
	apt, err := Normalize(RawRecord{"아파트": "래미안"}, Apartment)
	require.NoError(t, err)
	assert.Equal(t, "래미안", apt.BuildingUse)

	rh, err := Normalize(RawRecord{"연립다세대": "해피빌"}, RowHouse)
	require.NoError(t, err)
	assert.Equal(t, "해피빌", rh.BuildingUse)

	explicit, err := Normalize(RawRecord{"건물주용도": "근린생활", "아파트": "래미안"}, Apartment)
	require.NoError(t, err)
	assert.Equal(t, "근린생활", explicit.BuildingUse)
}

func TestNormalize_EnglishTags(t *testing.T) {
	raw := RawRecord{
		"dealAmount": "82,500",
		"dealYear":   "2025",
		"dealMonth":  "11",
		"dealDay":    "2",
		"umdNm":      "대치동",
		"excluUseAr": "84.97",
		"jibun":      "316",
		"aptNm":      "은마",
	}

	tx, err := Normalize(raw, Apartment)

	require.NoError(t, err)
	assert.Equal(t, "82500", tx.DealAmount.String())
	assert.Equal(t, "02", tx.DealDay)
	assert.Equal(t, "대치동", tx.Subdivision)
	assert.InDelta(t, 84.97, tx.BuildArea, 0.0001)
	assert.Equal(t, "은마", tx.BuildingUse)
}

func TestNormalize_MalformedNumbers(t *testing.T) {
	_, err := Normalize(RawRecord{"연면적": "abc"}, Commercial)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedField))

	_, err = Normalize(RawRecord{"거래금액": "12만"}, Commercial)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedField))
}

func TestNormalize_NegativeAreaClamped(t *testing.T) {
	tx, err := Normalize(RawRecord{"대지면적": "-3"}, DetachedHouse)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tx.LandArea)
}

func TestParsePropertyType(t *testing.T) {
	pt, err := ParsePropertyType(" Office ")
	require.NoError(t, err)
	assert.Equal(t, Commercial, pt)

	_, err = ParsePropertyType("castle")
	assert.Error(t, err)
}

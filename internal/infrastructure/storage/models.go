package storage

// Province is a top-level administrative region (시/도)
type Province struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Municipality is a sigungu, the unit the trade feed is queried by
type Municipality struct {
	Code         string `json:"code"` // 5-digit LAWD_CD
	ProvinceCode string `json:"province_code"`
	ProvinceName string `json:"province_name"`
	Name         string `json:"name"`
}

// FullName is the display name used for fallback addresses, e.g. "서울특별시 강남구"
func (m Municipality) FullName() string {
	if m.ProvinceName == "" {
		return m.Name
	}
	return m.ProvinceName + " " + m.Name
}

// Subdivision is a legal dong (법정동) within a municipality
type Subdivision struct {
	MunicipalityCode string `json:"municipality_code"`
	Code             string `json:"code"` // 5-digit bjdong code
	Name             string `json:"name"`
}

// RegionTree is a province with its municipalities and their subdivisions
type RegionTree struct {
	Province
	Municipalities []MunicipalityNode `json:"municipalities"`
}

// MunicipalityNode is a municipality with its subdivisions
type MunicipalityNode struct {
	Municipality
	Subdivisions []Subdivision `json:"subdivisions"`
}

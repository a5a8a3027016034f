package dto

// SearchRequest is the body of POST /api/search: one month of one property type.
type SearchRequest struct {
	RegionCode   string `json:"regionCode"`
	YMD          string `json:"ymd"`                    // YYYYMM
	PropertyType string `json:"propertyType,omitempty"` // default: commercial
}

// RangeSearchRequest is the body of POST /api/search/range.
type RangeSearchRequest struct {
	RegionCode    string   `json:"regionCode"`
	Start         string   `json:"start"` // YYYY-MM-DD
	End           string   `json:"end"`   // YYYY-MM-DD
	PropertyTypes []string `json:"propertyTypes,omitempty"`
}

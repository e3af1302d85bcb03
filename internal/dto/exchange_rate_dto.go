package dto

// NBPRate is one currency's current mid rate from an NBP table.
type NBPRate struct {
	Currency string  `json:"currency"`
	Code     string  `json:"code"`
	Mid      float64 `json:"mid"`
}

// NBPHistoricalRate is one dated mid rate from an NBP rate series.
type NBPHistoricalRate struct {
	No            string  `json:"no"`
	EffectiveDate string  `json:"effectiveDate"`
	Mid           float64 `json:"mid"`
}

// HistoricalRatesParams defines query parameters for a historical rate lookup.
type HistoricalRatesParams struct {
	Currency  string `form:"currency" binding:"required"`
	StartDate string `form:"startDate" binding:"required"` // YYYY-MM-DD
	EndDate   string `form:"endDate" binding:"required"`   // YYYY-MM-DD
}

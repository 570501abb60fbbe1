package models

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	Meter   string `query:"meter" json:"meter" default:"main"`
	Horizon int    `query:"horizon" json:"horizon" default:"24" validate:"gte=1,lte=24"`
}

type AlertCheckRequest struct {
	Meter     string  `query:"meter" json:"meter" default:"main"`
	Threshold float64 `query:"threshold" json:"threshold" default:"500" validate:"gt=0"`
}

type HistoricalRequest struct {
	Meter string `query:"meter" json:"meter" default:"main"`
	Start string `query:"start" json:"start" validate:"required"`
	End   string `query:"end" json:"end" validate:"required"`
	Limit int    `query:"limit" json:"limit" default:"5000" validate:"gte=1,lte=100000"`
}

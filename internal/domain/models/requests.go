package models

// Query parameters for the HTTP chart and report endpoints.

type BasisRequest struct {
	Future   string `query:"future" json:"future" default:"ES=F" validate:"required,max=16"`
	Index    string `query:"index" json:"index" default:"^GSPC" validate:"required,max=16"`
	Period   string `query:"period" json:"period" default:"2d" validate:"required,max=8"`
	Interval string `query:"interval" json:"interval" default:"1m" validate:"oneof=1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo"`
	Window   int    `query:"window" json:"window" default:"20" validate:"gte=1,lte=1000"`
	Format   string `query:"format" json:"format" default:"html" validate:"oneof=html png"`
}

type AnalysisRequest struct {
	Ticker   string `query:"ticker" param:"ticker" json:"ticker" default:"NVDA" validate:"required,max=16"`
	Period   string `query:"period" json:"period" default:"1y" validate:"required,max=8"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=1m 2m 5m 15m 30m 60m 90m 1h 1d 5d 1wk 1mo 3mo"`
	Format   string `query:"format" json:"format" default:"html" validate:"oneof=html png"`
}

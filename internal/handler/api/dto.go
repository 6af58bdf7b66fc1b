package api

import (
	"strconv"
	"time"

	"Cephu/internal/domain/models"
)

// JSON has no NaN, so undefined statistics are sent as null.

type BasisRowDTO struct {
	Time    time.Time `json:"time"`
	Future  float64   `json:"future"`
	Index   float64   `json:"index"`
	Basis   float64   `json:"basis"`
	BasisMA *float64  `json:"basis_ma"`
}

type BasisReportDTO struct {
	*models.BasisReport
	Rows []BasisRowDTO `json:"rows"`
}

type IndicatorRowDTO struct {
	Bar      models.Bar          `json:"bar"`
	SMA      map[string]*float64 `json:"sma"`
	VWAP     *float64            `json:"vwap"`
	RSI      *float64            `json:"rsi"`
	RSIMA    *float64            `json:"rsi_ma"`
	RSIStd   *float64            `json:"rsi_std"`
	RSIUpper *float64            `json:"rsi_upper"`
	RSILower *float64            `json:"rsi_lower"`
	Swing    int                 `json:"swing"`
	DBS      int                 `json:"dbs"`
}

type AnalysisReportDTO struct {
	*models.AnalysisReport
	Rows []IndicatorRowDTO `json:"rows"`
}

func NewBasisReportDTO(r *models.BasisReport) *BasisReportDTO {
	rows := make([]BasisRowDTO, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = BasisRowDTO{
			Time:    row.Time,
			Future:  row.Future,
			Index:   row.Index,
			Basis:   row.Basis,
			BasisMA: models.Nullable(row.BasisMA),
		}
	}
	return &BasisReportDTO{BasisReport: r, Rows: rows}
}

func NewAnalysisReportDTO(r *models.AnalysisReport) *AnalysisReportDTO {
	rows := make([]IndicatorRowDTO, len(r.Rows))
	for i, row := range r.Rows {
		sma := make(map[string]*float64, len(row.SMA))
		for w, v := range row.SMA {
			sma[strconv.Itoa(w)] = models.Nullable(v)
		}
		rows[i] = IndicatorRowDTO{
			Bar:      row.Bar,
			SMA:      sma,
			VWAP:     models.Nullable(row.VWAP),
			RSI:      models.Nullable(row.RSI),
			RSIMA:    models.Nullable(row.RSIMA),
			RSIStd:   models.Nullable(row.RSIStd),
			RSIUpper: models.Nullable(row.RSIUpper),
			RSILower: models.Nullable(row.RSILower),
			Swing:    row.Swing,
			DBS:      row.DBS,
		}
	}
	return &AnalysisReportDTO{AnalysisReport: r, Rows: rows}
}

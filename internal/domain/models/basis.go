package models

import "time"

// BasisRow is one aligned timestamp of the future/index table.
type BasisRow struct {
	Time    time.Time
	Future  float64
	Index   float64
	Basis   float64
	BasisMA float64
}

// BasisReport is the output of one basis run.
type BasisReport struct {
	Future      string     `json:"future"`
	Index       string     `json:"index"`
	Period      string     `json:"period"`
	Interval    string     `json:"interval"`
	Window      int        `json:"window"`
	Rows        []BasisRow `json:"-"`
	Takeaway    Takeaway   `json:"takeaway"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Last returns the most recent row. The caller guarantees Rows is non-empty.
func (r *BasisReport) Last() BasisRow { return r.Rows[len(r.Rows)-1] }

package models

import "time"

// ReportKind names the chart variant that produced a snapshot.
type ReportKind string

const (
	KindBasis    ReportKind = "basis"
	KindAnalysis ReportKind = "analysis"
)

// Snapshot is the one-row summary of a run shipped to the configured sink.
type Snapshot struct {
	RunID     string             `json:"run_id"`
	Kind      ReportKind         `json:"kind"`
	Symbol    string             `json:"symbol"`
	Reference string             `json:"reference,omitempty"`
	Interval  string             `json:"interval"`
	Timestamp time.Time          `json:"timestamp"`
	Rows      int                `json:"rows"`
	Signal    string             `json:"signal"`
	Values    map[string]float64 `json:"values"`
	Location  string             `json:"location,omitempty"`
}

// Format selects the exported artifact encoding.
type Format string

const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "text/html; charset=utf-8"
}

// Artifact is a rendered chart ready to be stored.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// Notification carries the takeaway of a run to external channels.
type Notification struct {
	Kind     ReportKind `json:"kind"`
	Symbol   string     `json:"symbol"`
	Signal   string     `json:"signal"`
	Title    string     `json:"title"`
	Text     string     `json:"text"`
	Location string     `json:"location,omitempty"`
	At       time.Time  `json:"at"`
}

package model

import "time"

// Report is the programmatic output of one analyze pass over a CCIPage,
// suitable for JSON/YAML serialization by the CLI and the API server.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Pages       []PageReport  `json:"pages" yaml:"pages"`
	Totals      ReportSummary `json:"totals" yaml:"totals"`
}

// PageReport summarizes one PageEntry after analysis.
type PageReport struct {
	Title     string   `json:"title" yaml:"title"`
	NewPage   bool     `json:"new_page" yaml:"new_page"`
	DiffCount int      `json:"diff_count" yaml:"diff_count"`
	Minor     []string `json:"minor" yaml:"minor"`
	Kept      []string `json:"kept" yaml:"kept"`
}

// ReportSummary aggregates counts across all pages of a report.
type ReportSummary struct {
	Entries int `json:"entries" yaml:"entries"`
	Diffs   int `json:"diffs" yaml:"diffs"`
	Minor   int `json:"minor" yaml:"minor"`
	Kept    int `json:"kept" yaml:"kept"`
}

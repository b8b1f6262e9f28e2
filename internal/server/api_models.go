package server

// StartAnalyzeRequest is the payload that starts a listing analysis.
type StartAnalyzeRequest struct {
	Name    string `json:"name" example:"Example contributor 20240101"`
	Listing string `json:"listing" example:"* [[:Alpha]] (2 edits): [[Special:Diff/101|(+188)]]"`
}

// CulledListingResponse carries a listing with its minor diffs removed.
type CulledListingResponse struct {
	AnalysisID string `json:"analysis_id"`
	Culled     string `json:"culled"`
}

// MinorEditsResponse lists the diff refs judged minor for an analysis.
type MinorEditsResponse struct {
	AnalysisID string   `json:"analysis_id"`
	Minor      []string `json:"minor"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

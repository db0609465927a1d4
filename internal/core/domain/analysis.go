package domain

// Analysis is the structured result of analysing one patent document.
// It is recomputed per request and never persisted.
type Analysis struct {
	// Title is the patent title, falling back to the document ID.
	Title string `json:"title"`

	// Date is the application date from chunk metadata, if known.
	Date string `json:"date"`

	// Applicant is the applicant name from chunk metadata, if known.
	Applicant string `json:"applicant"`

	// Summary is a short generated summary of the patent text.
	Summary string `json:"summary"`

	// NoveltyScore rates novelty on a 0-100 scale.
	NoveltyScore int `json:"noveltyScore"`

	// PotentialIssues lists generated legal/technical/novelty concerns.
	PotentialIssues []string `json:"potentialIssues"`

	// Recommendations lists generated suggestions to strengthen the patent.
	Recommendations []string `json:"recommendations"`

	// SimilarPatents lists the closest patents across the whole corpus,
	// most similar first.
	SimilarPatents []SimilarPatent `json:"similarPatents"`
}

// SimilarPatent is one corpus-wide similarity hit within an Analysis.
type SimilarPatent struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
	Date       string  `json:"date"`
	Assignee   string  `json:"assignee"`
	Excerpt    string  `json:"excerpt"`
}

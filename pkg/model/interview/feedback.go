package interview

// Feedback is the fixed-shape scorecard produced after a practice answer.
// It is replaced wholesale on each new feedback event, never merged.
type Feedback struct {
	OverallScore   int      `json:"overallScore"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
	StructureScore int      `json:"structureScore"`
	RelevanceScore int      `json:"relevanceScore"`
	ClarityScore   int      `json:"clarityScore"`
	StarMethodUsed bool     `json:"starMethodUsed"`
	Suggestions    []string `json:"suggestions"`
	RevisedAnswer  string   `json:"revisedAnswer,omitempty"`
}

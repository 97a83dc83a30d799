package domain

// InsightCount is the fixed number of insights in a KeyInsights report.
const InsightCount = 3

// MinEnrichedForInsights is the minimum number of enriched, non-note
// entries required before insights can be synthesised.
const MinEnrichedForInsights = 3

// KeyInsights is the cross-entry synthesis of an analysed run.
type KeyInsights struct {
	// Summary is a multi-paragraph Markdown summary.
	Summary string `json:"summary"`

	// Insights holds exactly InsightCount ranked insights.
	Insights []Insight `json:"insights"`
}

// Insight is one ranked finding with references back to entries.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// References are the entry IDs that evidence the insight.
	References []int `json:"references"`

	// RawReferences is the reference list as written by the model,
	// in display numbering (e.g. "#5, #12").
	RawReferences string `json:"rawReferences"`
}

// Package analytics delegates spending analysis to the hosted
// generative-language API and manages the request lifecycle around it.
// The categorization and insight content is an opaque external
// contract: this package validates shape, never reimplements the
// intelligence.
package analytics

const (
	InsightWarning  InsightType = "warning"
	InsightTip      InsightType = "tip"
	InsightPositive InsightType = "positive"
	InsightTrend    InsightType = "trend"
)

type (
	InsightType string

	// RecordSummary is the slice of a record the model sees and echoes
	// back inside category breakdowns.
	RecordSummary struct {
		Title  string  `json:"title"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}

	// Category is one named spending bucket in the model's breakdown.
	Category struct {
		Name       string          `json:"name"`
		Emoji      string          `json:"emoji"`
		Total      float64         `json:"total"`
		Count      int             `json:"count"`
		Percentage float64         `json:"percentage"`
		Expenses   []RecordSummary `json:"expenses"`
	}

	// Insight is one observation the model makes about the spending,
	// always backed by a concrete stat string.
	Insight struct {
		Type        InsightType `json:"type"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Stat        string      `json:"stat"`
	}

	// MonthlyTrend is one point of the per-month spending series.
	MonthlyTrend struct {
		Month string  `json:"month"`
		Total float64 `json:"total"`
	}

	// Result is the full analytics payload. It lives only in memory,
	// owned by the Tracker; nothing persists it.
	Result struct {
		Categories        []Category     `json:"categories"`
		Insights          []Insight      `json:"insights"`
		MonthlyTrends     []MonthlyTrend `json:"monthlyTrends"`
		TopCategory       string         `json:"topCategory"`
		TotalAnalyzed     float64        `json:"totalAnalyzed"`
		SavingsSuggestion string         `json:"savingsSuggestion"`
	}
)

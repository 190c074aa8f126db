package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"masarify/internal/core"
)

// ErrUnparsableResponse marks a reply that was not valid JSON after
// fence stripping. Callers show a generic retry message for it instead
// of the raw parse detail.
var ErrUnparsableResponse = errors.New("could not parse AI response")

// textGenerator is the single round trip to the language model. The
// production implementation lives in gemini.go.
type textGenerator interface {
	generateText(ctx context.Context, prompt string) (string, error)
}

type Analyzer struct {
	gen textGenerator
}

func newAnalyzer(gen textGenerator) *Analyzer {
	return &Analyzer{gen: gen}
}

// AnalyzeRecords asks the model to categorize the outgoing records and
// produce insights, trends, and a savings suggestion. When no outgoing
// records exist the canned empty result is returned without touching
// the network; that is an informational state, not an error.
func (a *Analyzer) AnalyzeRecords(ctx context.Context, records []core.Record, currencySymbol string) (*Result, error) {
	var outgoing []core.Record
	for _, r := range records {
		if r.Type == core.Outgoing {
			outgoing = append(outgoing, r)
		}
	}

	if len(outgoing) == 0 {
		return emptyResult(), nil
	}

	prompt, err := buildPrompt(outgoing, currencySymbol)
	if err != nil {
		return nil, fmt.Errorf("build analytics prompt: %w", err)
	}

	raw, err := a.gen.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal([]byte(stripFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}

	// Callers rely on the breakdown being ordered biggest-first.
	sort.Slice(result.Categories, func(i, j int) bool {
		return result.Categories[i].Total > result.Categories[j].Total
	})

	return &result, nil
}

func emptyResult() *Result {
	return &Result{
		Categories: []Category{},
		Insights: []Insight{{
			Type:        InsightTip,
			Title:       "No Spending Data",
			Description: "Add some outgoing expenses to get AI-powered spending insights!",
		}},
		MonthlyTrends:     []MonthlyTrend{},
		TopCategory:       "N/A",
		TotalAnalyzed:     0,
		SavingsSuggestion: "Start tracking your expenses to receive personalized savings advice.",
	}
}

type promptRecord struct {
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
}

// categorySet is the closed list the model must bucket expenses into.
var categorySet = []string{
	`"Dining Out" (restaurants, cafes, takeout, delivery food)`,
	`"Groceries" (supermarket, grocery shopping, food supplies)`,
	`"Transportation" (fuel, gas, car, uber, taxi, metro, bus, parking)`,
	`"Sports & Activities" (padel, football, gym, swimming, sports equipment)`,
	`"Entertainment" (movies, games, streaming, concerts, outings)`,
	`"Shopping" (clothes, electronics, gadgets, online shopping)`,
	`"Bills & Utilities" (electricity, water, internet, phone bills, rent)`,
	`"Health & Medical" (pharmacy, doctor, dentist, supplements)`,
	`"Education" (courses, books, tuition, school supplies)`,
	`"Personal Care" (haircut, grooming, skincare)`,
	`"Subscriptions" (streaming services, app subscriptions, memberships)`,
	`"Travel" (hotels, flights, vacation expenses)`,
	`"Gifts & Donations" (gifts, charity, donations)`,
	`"Other" (anything that doesn't fit above)`,
}

func buildPrompt(outgoing []core.Record, currencySymbol string) (string, error) {
	summaries := make([]promptRecord, len(outgoing))
	for i, r := range outgoing {
		summaries[i] = promptRecord{
			Title:       r.Title,
			Amount:      r.Amount,
			Description: r.Description,
			Date:        r.CreatedAt,
			Category:    r.Category,
		}
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a personal finance AI analyst. Analyze these expenses and return a JSON response.\n\n")
	b.WriteString("EXPENSES DATA:\n")
	b.Write(data)
	b.WriteString("\n\nCURRENCY: " + currencySymbol + "\n\n")
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Group each expense into one of these smart categories based on the title and description (pick the best fit):\n")
	for _, c := range categorySet {
		b.WriteString("   - " + c + "\n")
	}
	b.WriteString(`
2. Provide 3-5 personalized spending insights. Each insight MUST include a concrete "stat" field with a specific number/amount/percentage from the data to back it up. Each insight should be one of these types:
   - "warning": overspending alerts (e.g. a category that takes up a disproportionate share)
   - "tip": money-saving suggestions with concrete amounts
   - "positive": good spending habits worth highlighting
   - "trend": notable spending patterns (month-over-month changes, frequency, etc.)

3. Calculate monthly spending trends (group by month, format as "MMM YYYY").

4. Provide a one-sentence personalized savings suggestion with a specific amount.

IMPORTANT: Keep category emojis to exactly ONE per category. No emojis in insights.

RESPOND WITH ONLY THIS JSON FORMAT (no markdown, no code blocks, just raw JSON):
{
  "categories": [
    {
      "name": "Category Name",
      "emoji": "🍕",
      "total": 150.00,
      "count": 5,
      "percentage": 25.5,
      "expenses": [{"title": "...", "amount": 30.00, "date": "2025-01-15"}]
    }
  ],
  "insights": [
    {
      "type": "warning",
      "title": "High Dining Spending",
      "description": "Dining out accounts for a large portion of your total spending this period.",
      "stat": "` + currencySymbol + `600 · 40% of total"
    }
  ],
  "monthlyTrends": [
    {"month": "Jan 2025", "total": 500.00}
  ],
  "topCategory": "Dining Out",
  "totalAnalyzed": 1500.00,
  "savingsSuggestion": "Consider cooking at home 2 more times per week to save ~` + currencySymbol + `200/month."
}`)

	return b.String(), nil
}

// stripFences removes Markdown code fences the model sometimes wraps
// its JSON in despite instructions, then narrows to the outermost
// object braces.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"masarify/internal/core"
)

type fakeGenerator struct {
	reply   string
	err     error
	called  int
	prompts []string
}

func (f *fakeGenerator) generateText(_ context.Context, prompt string) (string, error) {
	f.called++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const wellFormedReply = `{
  "categories": [
    {"name": "Groceries", "emoji": "🛒", "total": 80, "count": 2, "percentage": 40, "expenses": []},
    {"name": "Dining Out", "emoji": "🍕", "total": 120, "count": 3, "percentage": 60, "expenses": []}
  ],
  "insights": [
    {"type": "warning", "title": "High Dining Spending", "description": "d", "stat": "$120 · 60% of total"}
  ],
  "monthlyTrends": [{"month": "Jan 2025", "total": 200}],
  "topCategory": "Dining Out",
  "totalAnalyzed": 200,
  "savingsSuggestion": "Cook at home to save ~$50/month."
}`

func outgoingRecords() []core.Record {
	return []core.Record{
		{ID: "a", Title: "Pizza", Amount: 120, Type: core.Outgoing, CreatedAt: "2025-01-10T12:00:00Z"},
		{ID: "b", Title: "Market", Amount: 80, Type: core.Outgoing, CreatedAt: "2025-01-12T12:00:00Z"},
	}
}

func TestAnalyzeEmptyShortCircuits(t *testing.T) {
	gen := &fakeGenerator{reply: wellFormedReply}
	a := newAnalyzer(gen)

	for _, records := range [][]core.Record{
		nil,
		{{ID: "x", Title: "Salary", Amount: 1000, Type: core.Incoming}},
	} {
		result, err := a.AnalyzeRecords(context.Background(), records, "$")
		if err != nil {
			t.Fatalf("expected informational result, got %v", err)
		}
		if len(result.Categories) != 0 {
			t.Fatalf("expected no categories, got %d", len(result.Categories))
		}
		if len(result.Insights) != 1 || result.Insights[0].Type != InsightTip {
			t.Fatalf("expected exactly one tip insight, got %+v", result.Insights)
		}
		if len(result.MonthlyTrends) != 0 || result.TopCategory != "N/A" || result.TotalAnalyzed != 0 {
			t.Fatalf("unexpected empty-state payload: %+v", result)
		}
	}
	if gen.called != 0 {
		t.Fatalf("no external call may happen without outgoing records, got %d", gen.called)
	}
}

func TestAnalyzeSortsCategoriesDescending(t *testing.T) {
	a := newAnalyzer(&fakeGenerator{reply: wellFormedReply})
	result, err := a.AnalyzeRecords(context.Background(), outgoingRecords(), "$")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Categories[0].Name != "Dining Out" || result.Categories[1].Name != "Groceries" {
		t.Fatalf("categories not sorted by total desc: %+v", result.Categories)
	}
}

func TestAnalyzeStripsCodeFences(t *testing.T) {
	for _, fenced := range []string{
		"```json\n" + wellFormedReply + "\n```",
		"```\n" + wellFormedReply + "\n```",
		"Here you go:\n```json\n" + wellFormedReply + "\n```\nHope that helps!",
	} {
		a := newAnalyzer(&fakeGenerator{reply: fenced})
		result, err := a.AnalyzeRecords(context.Background(), outgoingRecords(), "$")
		if err != nil {
			t.Fatalf("fenced reply should parse, got %v", err)
		}
		if result.TotalAnalyzed != 200 {
			t.Fatalf("wrong payload after stripping: %+v", result)
		}
	}
}

func TestAnalyzeParseErrorIsDistinct(t *testing.T) {
	a := newAnalyzer(&fakeGenerator{reply: "definitely not json"})
	_, err := a.AnalyzeRecords(context.Background(), outgoingRecords(), "$")
	if !errors.Is(err, ErrUnparsableResponse) {
		t.Fatalf("expected ErrUnparsableResponse, got %v", err)
	}
}

func TestAnalyzeTransportErrorPassesThrough(t *testing.T) {
	transport := errors.New("model overloaded")
	a := newAnalyzer(&fakeGenerator{err: transport})
	_, err := a.AnalyzeRecords(context.Background(), outgoingRecords(), "$")
	if !errors.Is(err, transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if errors.Is(err, ErrUnparsableResponse) {
		t.Fatalf("transport error must not look like a parse error")
	}
}

func TestPromptCarriesRecordData(t *testing.T) {
	gen := &fakeGenerator{reply: wellFormedReply}
	a := newAnalyzer(gen)
	records := []core.Record{
		{ID: "a", Title: "Padel court", Amount: 25, Description: "weekly game", Category: "Sports & Activities",
			Type: core.Outgoing, CreatedAt: "2025-02-01T18:00:00Z"},
		{ID: "b", Title: "Salary", Amount: 3000, Type: core.Incoming, CreatedAt: "2025-02-01T09:00:00Z"},
	}
	if _, err := a.AnalyzeRecords(context.Background(), records, "E£"); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"Padel court", "weekly game", "2025-02-01T18:00:00Z", "CURRENCY: E£", `"Dining Out"`} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Salary") {
		t.Fatalf("incoming records must not reach the model")
	}
}

package core

// Stats holds derived totals over a record set. Never persisted;
// recomputed on each query.
type Stats struct {
	TotalIncoming float64 `json:"totalIncoming"`
	TotalOutgoing float64 `json:"totalOutgoing"`
	NetAmount     float64 `json:"netAmount"`
	IncomeCount   int     `json:"incomeCount"`
	ExpenseCount  int     `json:"expenseCount"`
}

// ComputeStats folds a record set into running totals. Each record
// contributes its full amount to exactly one side based on its type.
// Date scoping, when wanted, happens upstream in the store query; this
// function assumes it received the correctly scoped set. An empty input
// yields all-zero stats.
func ComputeStats(records []Record) Stats {
	var s Stats
	for _, r := range records {
		if r.Type == Incoming {
			s.TotalIncoming += r.Amount
			s.IncomeCount++
		} else {
			s.TotalOutgoing += r.Amount
			s.ExpenseCount++
		}
	}
	s.NetAmount = s.TotalIncoming - s.TotalOutgoing
	return s
}

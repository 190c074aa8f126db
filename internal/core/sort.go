package core

import "sort"

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

type (
	SortField string
	SortOrder string
)

// SortRecords returns a new slice ordered by the given field and order.
// The input is never mutated. Date comparison uses the creation timestamp
// reduced to epoch milliseconds; amount comparison is numeric. Equal keys
// fall back to record ID ascending so the ordering is deterministic
// regardless of input order.
func SortRecords(records []Record, field SortField, order SortOrder) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	sort.Slice(out, func(i, j int) bool {
		var cmp int
		switch field {
		case SortByAmount:
			cmp = compareFloat(out[i].Amount, out[j].Amount)
		default:
			cmp = compareInt64(out[i].CreatedTime().UnixMilli(), out[j].CreatedTime().UnixMilli())
		}
		if cmp == 0 {
			return out[i].ID < out[j].ID
		}
		if order == Ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

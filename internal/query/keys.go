package query

import (
	"strings"

	"masarify/internal/core"
)

// Keys are "<kind>|<owner>|<params...>". Everything an owner has cached
// shares the "<kind>|<owner>|" prefix, so a mutation can drop the lot
// with one prefix sweep.

func listKey(ownerID string, f *core.RecordFilter) string {
	parts := []string{"records", ownerID, "", "", "", ""}
	if f != nil {
		parts[2] = string(f.Type)
		parts[3] = f.StartDate
		parts[4] = f.EndDate
		parts[5] = f.Category
	}
	return strings.Join(parts, "|")
}

func detailKey(ownerID, recordID string) string {
	return strings.Join([]string{"record", ownerID, recordID}, "|")
}

func statsKey(ownerID, startDate, endDate string) string {
	return strings.Join([]string{"stats", ownerID, startDate, endDate}, "|")
}

func ownerPrefix(kind, ownerID string) string {
	return kind + "|" + ownerID + "|"
}

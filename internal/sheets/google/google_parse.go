package google

import (
	"fmt"
	"strconv"
	"strings"

	"planner/internal/core"
	ports "planner/internal/sheets"
)

// parseRows converts a month tab back into expenses. The header and total
// rows are skipped, as are rows whose amount cannot be read. IDs are the
// one-based position among the parsed rows.
func parseRows(values [][]any) []core.Expense {
	out := []core.Expense{}
	for i, row := range values {
		cols := toStrings(row)
		if len(cols) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(cols[0], fmt.Sprint(ports.Header[0])) {
			continue
		}
		if strings.EqualFold(cols[0], ports.TotalLabel) {
			break
		}
		amount, ok := parseAmount(safeGet(cols, 2))
		if !ok {
			continue
		}
		out = append(out, core.Expense{
			ID:          int64(len(out) + 1),
			Category:    cols[0],
			Description: safeGet(cols, 1),
			Amount:      amount,
		})
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmount accepts both numbers rendered by the API and user-typed
// decimals with a comma separator.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

package queryengine

// maxReducedRows is how many rows per table survive reduction.
const maxReducedRows = 5

// Reduce shrinks a result document before it goes to the renderer: error
// tables are dropped, each surviving table keeps its first five rows, and
// null or empty values disappear from each row. Reduction is one level
// deep; row values are never descended into.
func Reduce(result map[string]any) map[string]any {
	out := make(map[string]any, len(result))
	for table, v := range result {
		rows, ok := v.([]map[string]any)
		if !ok || len(rows) == 0 {
			continue
		}
		if len(rows) > maxReducedRows {
			rows = rows[:maxReducedRows]
		}
		cleaned := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			cr := make(map[string]any, len(row))
			for k, val := range row {
				if val == nil {
					continue
				}
				if s, isStr := val.(string); isStr && s == "" {
					continue
				}
				cr[k] = val
			}
			if len(cr) > 0 {
				cleaned = append(cleaned, cr)
			}
		}
		if len(cleaned) > 0 {
			out[table] = cleaned
		}
	}
	return out
}

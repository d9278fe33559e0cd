package queryengine

import "testing"

func TestReduceTruncatesAndCleans(t *testing.T) {
	rows := make([]map[string]any, 8)
	for i := range rows {
		rows[i] = map[string]any{"horse": "name", "comment": "", "rpr": nil}
	}

	out := Reduce(map[string]any{"Horse": rows})
	got, ok := out["Horse"].([]map[string]any)
	if !ok {
		t.Fatal("Horse table missing from reduced output")
	}
	if len(got) != maxReducedRows {
		t.Errorf("rows = %d, want %d", len(got), maxReducedRows)
	}
	for _, row := range got {
		if _, present := row["comment"]; present {
			t.Error("empty string survived reduction")
		}
		if _, present := row["rpr"]; present {
			t.Error("nil value survived reduction")
		}
	}
}

func TestReduceDropsErrorTablesAndEmptyRows(t *testing.T) {
	out := Reduce(map[string]any{
		"Race":  map[string]any{"error": "unknown table"},
		"Horse": []map[string]any{{"horse": "Jonbon"}, {"comment": ""}},
		"Empty": []map[string]any{},
	})

	if _, ok := out["Race"]; ok {
		t.Error("error table survived reduction")
	}
	if _, ok := out["Empty"]; ok {
		t.Error("empty table survived reduction")
	}
	horses, ok := out["Horse"].([]map[string]any)
	if !ok || len(horses) != 1 {
		t.Fatalf("Horse rows = %v, want the single non-empty row", out["Horse"])
	}
}

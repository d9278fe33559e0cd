package queryengine

import (
	"encoding/json"
	"testing"
)

func TestDecodePlanSeparatesControlKeys(t *testing.T) {
	raw := json.RawMessage(`{
		"filters": {
			"Race": {
				"going": "Soft",
				"race_name": {"contains": "Gold Cup"},
				"date": {"range": ["2026-01-01", "2026-03-31"]},
				"sort": ["date", "desc"],
				"limit": 10,
				"fields": ["race_id", "race_name", "date"]
			}
		},
		"content": ["Course"]
	}`)

	plan, err := DecodePlan(raw)
	if err != nil {
		t.Fatalf("DecodePlan: %v", err)
	}

	race, ok := plan.Filters["Race"]
	if !ok {
		t.Fatal("missing Race filter")
	}
	if len(race.Conditions) != 3 {
		t.Errorf("conditions = %d, want 3", len(race.Conditions))
	}
	if race.Conditions["going"].Exact != "Soft" {
		t.Errorf("going = %+v, want exact Soft", race.Conditions["going"])
	}
	if race.Conditions["race_name"].Contains != "Gold Cup" {
		t.Errorf("race_name = %+v, want contains Gold Cup", race.Conditions["race_name"])
	}
	if r := race.Conditions["date"].Range; len(r) != 2 || r[0] != "2026-01-01" {
		t.Errorf("date range = %v", r)
	}
	if race.Limit != 10 {
		t.Errorf("limit = %d, want 10", race.Limit)
	}
	if len(race.Sort) != 2 || race.Sort[0] != "date" {
		t.Errorf("sort = %v", race.Sort)
	}
	if len(plan.Content) != 1 || plan.Content[0] != "Course" {
		t.Errorf("content = %v", plan.Content)
	}
}

func TestDecodePlanRewritesGradeToRaceClass(t *testing.T) {
	raw := json.RawMessage(`{
		"filters": {
			"Race": {
				"grade": "1",
				"fields": ["race_name", "grade"],
				"sort": ["grade", "asc"]
			}
		}
	}`)

	plan, err := DecodePlan(raw)
	if err != nil {
		t.Fatalf("DecodePlan: %v", err)
	}

	race := plan.Filters["Race"]
	if _, ok := race.Conditions["grade"]; ok {
		t.Error("grade condition survived rewrite")
	}
	if race.Conditions["race_class"].Exact != "1" {
		t.Errorf("race_class = %+v, want exact 1", race.Conditions["race_class"])
	}
	if race.Fields[1] != "race_class" {
		t.Errorf("fields = %v, want grade rewritten", race.Fields)
	}
	if race.Sort[0] != "race_class" {
		t.Errorf("sort = %v, want grade rewritten", race.Sort)
	}
}

func TestParseConditionNormalizesNumericScalars(t *testing.T) {
	cond, err := parseCondition(json.RawMessage(`3.0`))
	if err != nil {
		t.Fatalf("parseCondition: %v", err)
	}
	if cond.Exact != "3" {
		t.Errorf("3.0 normalized to %q, want 3", cond.Exact)
	}

	cond, err = parseCondition(json.RawMessage(`2.25`))
	if err != nil {
		t.Fatalf("parseCondition: %v", err)
	}
	if cond.Exact != "2.25" {
		t.Errorf("2.25 normalized to %q", cond.Exact)
	}

	cond, err = parseCondition(json.RawMessage(`{"range": [1, 3]}`))
	if err != nil {
		t.Fatalf("parseCondition: %v", err)
	}
	if len(cond.Range) != 2 || cond.Range[0] != "1" || cond.Range[1] != "3" {
		t.Errorf("range = %v, want [1 3]", cond.Range)
	}
}

func TestParseConditionRejectsBadRange(t *testing.T) {
	if _, err := parseCondition(json.RawMessage(`{"range": [1]}`)); err == nil {
		t.Error("single-bound range accepted")
	}
	if _, err := parseCondition(json.RawMessage(`{"range": [1, [2]]}`)); err == nil {
		t.Error("non-scalar bound accepted")
	}
}

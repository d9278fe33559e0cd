package queryengine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/conorwd/raceql/db"
	"github.com/conorwd/raceql/models"
	"github.com/conorwd/raceql/store"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	handle, err := db.SetupSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { handle.Close() })
	ctx := context.Background()
	if err := db.CreateTables(ctx, handle); err != nil {
		t.Fatalf("creating tables: %v", err)
	}

	st := store.New(handle, nil)
	seedCatalog(t, st)
	return NewExecutor(st, nil)
}

func seedCatalog(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	idb := st.DB()

	courses := []*models.Course{
		{CourseID: "crs_1", Course: "Ascot", RegionCode: "gb", Region: "GB"},
		{CourseID: "crs_2", Course: "Cheltenham", RegionCode: "gb", Region: "GB"},
	}
	if err := store.UpsertCourses(ctx, idb, courses); err != nil {
		t.Fatalf("seeding courses: %v", err)
	}

	races := []*models.Race{
		{RaceID: "rac_1", CourseID: "crs_1", Date: "2026-02-14", OffTime: "14:30",
			RaceName: "Ascot Chase", Distance: "2m5f", Region: "GB", Type: "Chase",
			RaceClass: "1", Going: "Soft"},
		{RaceID: "rac_2", CourseID: "crs_2", Date: "2026-03-13", OffTime: "15:30",
			RaceName: "Gold Cup", Distance: "3m2f", Region: "GB", Type: "Chase",
			RaceClass: "1", Going: "Good To Soft"},
		{RaceID: "rac_3", CourseID: "crs_2", Date: "2026-03-12", OffTime: "13:30",
			RaceName: "Novices Hurdle", Distance: "2m", Region: "GB", Type: "Hurdle",
			RaceClass: "2", Going: "Good"},
	}
	for _, r := range races {
		if err := store.UpsertRace(ctx, idb, r); err != nil {
			t.Fatalf("seeding race: %v", err)
		}
	}

	horses := []*models.Horse{
		{HorseID: "hrs_1", Horse: "Jonbon", Sex: "g", Sire: "Walk In The Park"},
		{HorseID: "hrs_2", Horse: "Galopin Des Champs", Sex: "g", Sire: "Timos"},
		{HorseID: "hrs_3", Horse: "Constitution Hill", Sex: "g", Sire: "Blue Bresil"},
	}
	for _, h := range horses {
		if err := store.UpsertHorse(ctx, idb, h); err != nil {
			t.Fatalf("seeding horse: %v", err)
		}
	}

	if err := store.UpsertTrainer(ctx, idb, &models.Trainer{TrainerID: "trn_1", Trainer: "W Mullins"}); err != nil {
		t.Fatalf("seeding trainer: %v", err)
	}

	results := []*models.Result{
		{ResultID: "rac_1_hrs_1", RaceID: "rac_1", HorseID: "hrs_1", Position: "1", SPDec: "1.67", SP: "4/6F"},
		{ResultID: "rac_2_hrs_2", RaceID: "rac_2", HorseID: "hrs_2", Position: "1", SPDec: "2.25", SP: "5/4F"},
		{ResultID: "rac_2_hrs_1", RaceID: "rac_2", HorseID: "hrs_1", Position: "3", SPDec: "6.0", SP: "5/1"},
		{ResultID: "rac_3_hrs_3", RaceID: "rac_3", HorseID: "hrs_3", Position: "2", SPDec: "1.25", SP: "1/4F"},
	}
	for _, r := range results {
		if err := store.UpsertResult(ctx, idb, r); err != nil {
			t.Fatalf("seeding result: %v", err)
		}
	}
}

func tableRows(t *testing.T, result map[string]any, table string) []map[string]any {
	t.Helper()
	rows, ok := result[table].([]map[string]any)
	if !ok {
		t.Fatalf("table %s = %v, want rows", table, result[table])
	}
	return rows
}

func TestExecuteExactMatchExpandsRequiredRelations(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Race": {Conditions: map[string]Condition{"going": {Exact: "Soft"}}},
	}}
	result := e.Execute(context.Background(), plan)

	races := tableRows(t, result, "Race")
	if len(races) != 1 || races[0]["race_name"] != "Ascot Chase" {
		t.Fatalf("races = %v, want Ascot Chase", races)
	}

	// The course referenced by the race comes along, trimmed to its
	// required fields.
	courses := tableRows(t, result, "Course")
	if len(courses) != 1 || courses[0]["course"] != "Ascot" {
		t.Fatalf("courses = %v, want Ascot", courses)
	}
	if _, ok := courses[0]["region"]; ok {
		t.Error("expanded course carries more than required fields")
	}
}

func TestExecuteContainsAndSort(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Race": {
			Conditions: map[string]Condition{"type": {Contains: "hase"}},
			Sort:       []string{"date", "desc"},
			Limit:      5,
		},
	}}
	result := e.Execute(context.Background(), plan)

	races := tableRows(t, result, "Race")
	if len(races) != 2 {
		t.Fatalf("races = %d, want 2 chases", len(races))
	}
	if races[0]["race_name"] != "Gold Cup" {
		t.Errorf("first race = %v, want Gold Cup (newest)", races[0]["race_name"])
	}
}

func TestExecutePositionRangeEnumeratesValues(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Result": {Conditions: map[string]Condition{"position": {Range: []string{"1", "2"}}}},
	}}
	result := e.Execute(context.Background(), plan)

	results := tableRows(t, result, "Result")
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 with position 1 or 2", len(results))
	}
	for _, r := range results {
		if p := r["position"]; p != "1" && p != "2" {
			t.Errorf("position = %v, outside range", p)
		}
	}
}

func TestExecutePositionExactNormalizesRepresentation(t *testing.T) {
	e := newTestExecutor(t)

	// The planner emits positions as numbers, strings or zero-padded
	// strings; all of them have to match the row stored as "3".
	for _, raw := range []string{`"3"`, `3`, `3.0`, `"03"`} {
		cond, err := parseCondition(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("parseCondition(%s): %v", raw, err)
		}
		plan := &FilterPlan{Filters: map[string]TableFilter{
			"Result": {Conditions: map[string]Condition{"position": cond}},
		}}
		result := e.Execute(context.Background(), plan)

		results := tableRows(t, result, "Result")
		if len(results) != 1 || results[0]["position"] != "3" {
			t.Errorf("position %s matched %d rows, want the position-3 result", raw, len(results))
		}
	}
}

func TestExecuteSPDecRangeCastsText(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Result": {Conditions: map[string]Condition{"sp_dec": {Range: []string{"1.5", "3"}}}},
	}}
	result := e.Execute(context.Background(), plan)

	results := tableRows(t, result, "Result")
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 in price band", len(results))
	}
}

func TestExecuteResultRowsCarryRaceContext(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Result": {
			Conditions: map[string]Condition{"horse_id": {Exact: "hrs_1"}},
			Fields:     []string{"position", "sp"},
		},
	}}
	result := e.Execute(context.Background(), plan)

	results := tableRows(t, result, "Result")
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 runs for hrs_1", len(results))
	}
	for _, r := range results {
		// Joined race context survives the field projection.
		if r["race_name"] == nil || r["course"] == nil {
			t.Errorf("row %v missing race context", r)
		}
		if _, ok := r["btn"]; ok {
			t.Error("unrequested field survived projection")
		}
	}
}

func TestExecuteContextTables(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{
		Filters: map[string]TableFilter{
			"Horse": {Conditions: map[string]Condition{"horse": {Exact: "Jonbon"}}},
		},
		Content: []string{"Trainer"},
	}
	result := e.Execute(context.Background(), plan)

	trainers := tableRows(t, result, "Trainer")
	if len(trainers) != 1 || trainers[0]["trainer"] != "W Mullins" {
		t.Errorf("trainers = %v, want W Mullins", trainers)
	}
}

func TestExecuteIsolatesUnknownTable(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Bloodstock": {Conditions: map[string]Condition{"name": {Exact: "x"}}},
		"Horse":      {Conditions: map[string]Condition{"horse": {Exact: "Jonbon"}}},
	}}
	result := e.Execute(context.Background(), plan)

	errTable, ok := result["Bloodstock"].(map[string]any)
	if !ok || errTable["error"] == nil {
		t.Errorf("Bloodstock = %v, want error entry", result["Bloodstock"])
	}
	horses := tableRows(t, result, "Horse")
	if len(horses) != 1 {
		t.Errorf("horses = %d, want the valid table to still run", len(horses))
	}
}

func TestExecuteIgnoresUnknownField(t *testing.T) {
	e := newTestExecutor(t)

	plan := &FilterPlan{Filters: map[string]TableFilter{
		"Horse": {Conditions: map[string]Condition{
			"horse":       {Exact: "Jonbon"},
			"blood_group": {Exact: "O"},
		}},
	}}
	result := e.Execute(context.Background(), plan)

	horses := tableRows(t, result, "Horse")
	if len(horses) != 1 {
		t.Errorf("horses = %d, unknown field should be ignored", len(horses))
	}
}

func TestQueryTableRejectsUnknownTable(t *testing.T) {
	e := newTestExecutor(t)

	if _, err := e.QueryTable(context.Background(), "Bloodstock", TableFilter{}); err == nil {
		t.Error("QueryTable accepted unknown table")
	}
}

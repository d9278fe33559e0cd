package queryengine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/conorwd/raceql/models"
	"github.com/conorwd/raceql/store"
)

// defaultRowCap bounds any table read that arrives without a usable limit.
const defaultRowCap = 50

// tableAlias maps plan table names to the bun model aliases, needed to
// disambiguate columns once Result pulls in its Race and Course relations.
var tableAlias = map[string]string{
	"Course":  "c",
	"Race":    "rc",
	"Horse":   "h",
	"Jockey":  "j",
	"Trainer": "t",
	"Owner":   "o",
	"Result":  "r",
}

// Executor runs filter plans against the store. Tables dispatch through an
// explicit switch; a plan can only ever reach the catalog tables.
type Executor struct {
	store  *store.Store
	log    *zap.Logger
	maxRow int
}

// NewExecutor builds an Executor with the default row cap.
func NewExecutor(st *store.Store, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{store: st, log: log, maxRow: defaultRowCap}
}

// Execute runs a plan in three passes: direct table queries, one-hop
// expansion of required relationships, then the plan's context tables.
// A failing table is recorded as {"error": ...} under its key and the
// remaining tables still run.
func (e *Executor) Execute(ctx context.Context, plan *FilterPlan) map[string]any {
	result := make(map[string]any)

	names := make([]string, 0, len(plan.Filters))
	for name := range plan.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, table := range names {
		if _, ok := schema[table]; !ok {
			result[table] = errEntry(fmt.Sprintf("unknown table %q", table))
			continue
		}
		rows, err := e.fetch(ctx, table, plan.Filters[table], "", nil)
		if err != nil {
			e.log.Warn("table query failed", zap.String("table", table), zap.Error(err))
			result[table] = errEntry(err.Error())
			continue
		}
		if len(rows) > 0 {
			result[table] = rows
		}
	}

	// Expansion stays one hop deep: tables pulled in here are not
	// themselves expanded.
	for _, table := range names {
		rows, ok := result[table].([]map[string]any)
		if !ok || len(rows) == 0 {
			continue
		}
		for _, rel := range schema[table].Relationships {
			if !rel.Required {
				continue
			}
			if _, exists := result[rel.Table]; exists {
				continue
			}
			ids := distinctValues(rows, rel.JoinField)
			if len(ids) == 0 {
				continue
			}
			related, err := e.fetch(ctx, rel.Table, TableFilter{Fields: schema[rel.Table].RequiredFields}, rel.JoinField, ids)
			if err != nil {
				e.log.Warn("related table query failed", zap.String("table", rel.Table), zap.Error(err))
				result[rel.Table] = errEntry(err.Error())
				continue
			}
			if len(related) > 0 {
				result[rel.Table] = related
			}
		}
	}

	for _, table := range plan.Content {
		if _, exists := result[table]; exists {
			continue
		}
		info, ok := schema[table]
		if !ok {
			result[table] = errEntry(fmt.Sprintf("unknown table %q", table))
			continue
		}
		rows, err := e.fetch(ctx, table, TableFilter{Fields: info.RequiredFields}, "", nil)
		if err != nil {
			e.log.Warn("context table query failed", zap.String("table", table), zap.Error(err))
			result[table] = errEntry(err.Error())
			continue
		}
		if len(rows) > 0 {
			result[table] = rows
		}
	}

	return result
}

// QueryTable runs a single-table read outside a full plan. The complex
// answer path uses it for step data collection.
func (e *Executor) QueryTable(ctx context.Context, table string, filter TableFilter) ([]map[string]any, error) {
	if _, ok := schema[table]; !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return e.fetch(ctx, table, filter, "", nil)
}

func errEntry(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func distinctValues(rows []map[string]any, field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		v, ok := row[field].(string)
		if !ok || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// fetch dispatches to the concrete model for the table, scans the rows and
// projects them to the requested fields.
func (e *Executor) fetch(ctx context.Context, table string, f TableFilter, joinField string, ids []string) ([]map[string]any, error) {
	db := e.store.DB()
	switch table {
	case "Course":
		var rows []models.Course
		if err := e.scan(ctx, db.NewSelect().Model(&rows), table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = courseRow(r, f.Fields)
		}
		return out, nil
	case "Race":
		var rows []models.Race
		if err := e.scan(ctx, db.NewSelect().Model(&rows), table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = raceRow(r, f.Fields)
		}
		return out, nil
	case "Horse":
		var rows []models.Horse
		if err := e.scan(ctx, db.NewSelect().Model(&rows), table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = horseRow(r, f.Fields)
		}
		return out, nil
	case "Jockey":
		var rows []models.Jockey
		if err := e.scan(ctx, db.NewSelect().Model(&rows), table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = jockeyRow(r, f.Fields)
		}
		return out, nil
	case "Trainer":
		var rows []models.Trainer
		if err := e.scan(ctx, db.NewSelect().Model(&rows), table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = trainerRow(r, f.Fields)
		}
		return out, nil
	case "Owner":
		var rows []models.Owner
		if err := e.scan(ctx, db.NewSelect().Model(&rows), table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = ownerRow(r, f.Fields)
		}
		return out, nil
	case "Result":
		var rows []models.Result
		q := db.NewSelect().Model(&rows).Relation("Race").Relation("Race.Course")
		if err := e.scan(ctx, q, table, f, joinField, ids); err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(rows))
		for i, r := range rows {
			out[i] = resultRow(r, f.Fields)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown table %q", table)
}

// scan applies validated predicates, sort and limit, then runs the query.
// Fields the catalog does not know are ignored rather than failing the
// whole table.
func (e *Executor) scan(ctx context.Context, q *bun.SelectQuery, table string, f TableFilter, joinField string, ids []string) error {
	alias := tableAlias[table]
	info := schema[table]

	if len(ids) > 0 {
		q = q.Where(alias+"."+joinField+" IN (?)", bun.In(ids))
	}

	for field, cond := range f.Conditions {
		if _, ok := info.Fields[field]; !ok {
			continue
		}
		q = applyCondition(q, alias+"."+field, field, cond)
	}

	if len(f.Sort) == 2 {
		if _, ok := info.Fields[f.Sort[0]]; ok {
			dir := "ASC"
			if strings.EqualFold(f.Sort[1], "desc") {
				dir = "DESC"
			}
			q = q.OrderExpr(alias + "." + f.Sort[0] + " " + dir)
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > e.maxRow {
		limit = e.maxRow
	}
	return q.Limit(limit).Scan(ctx)
}

// applyCondition translates one predicate. Ratings, prices and positions
// live as text, so numeric comparisons cast or enumerate instead of
// trusting the column type.
func applyCondition(q *bun.SelectQuery, col, field string, cond Condition) *bun.SelectQuery {
	switch {
	case cond.Contains != "":
		return q.Where(col+" LIKE ?", "%"+cond.Contains+"%")
	case len(cond.Range) == 2:
		switch field {
		case "sp_dec":
			lo, errLo := strconv.ParseFloat(cond.Range[0], 64)
			hi, errHi := strconv.ParseFloat(cond.Range[1], 64)
			if errLo != nil || errHi != nil {
				return q
			}
			return q.Where("CAST("+col+" AS REAL) >= ?", lo).
				Where("CAST("+col+" AS REAL) <= ?", hi)
		case "position":
			lo, errLo := strconv.Atoi(cond.Range[0])
			hi, errHi := strconv.Atoi(cond.Range[1])
			if errLo != nil || errHi != nil || lo > hi {
				return q
			}
			positions := make([]string, 0, hi-lo+1)
			for p := lo; p <= hi; p++ {
				positions = append(positions, strconv.Itoa(p))
			}
			return q.Where(col+" IN (?)", bun.In(positions))
		default:
			return q.Where(col+" >= ?", cond.Range[0]).
				Where(col+" <= ?", cond.Range[1])
		}
	default:
		if field == "position" {
			// Positions are stored as bare integer text. "03" or "3"
			// both have to hit the row stored as "3".
			if n, err := strconv.Atoi(strings.TrimSpace(cond.Exact)); err == nil {
				return q.Where(col+" = ?", strconv.Itoa(n))
			}
		}
		return q.Where(col+" = ?", cond.Exact)
	}
}

// addFields copies src into dst, either everything or just the requested
// field names.
func addFields(dst, src map[string]any, fields []string) {
	if len(fields) == 0 {
		for k, v := range src {
			dst[k] = v
		}
		return
	}
	for _, f := range fields {
		if v, ok := src[f]; ok {
			dst[f] = v
		}
	}
}

func courseRow(r models.Course, fields []string) map[string]any {
	row := make(map[string]any)
	addFields(row, map[string]any{
		"course_id":   r.CourseID,
		"course":      r.Course,
		"region_code": r.RegionCode,
		"region":      r.Region,
	}, fields)
	return row
}

func raceRow(r models.Race, fields []string) map[string]any {
	row := make(map[string]any)
	addFields(row, map[string]any{
		"race_id":    r.RaceID,
		"course_id":  r.CourseID,
		"date":       r.Date,
		"off_time":   r.OffTime,
		"race_name":  r.RaceName,
		"distance":   r.Distance,
		"distance_f": r.DistanceF,
		"region":     r.Region,
		"type":       r.Type,
		"going":      r.Going,
		"race_class": r.RaceClass,
	}, fields)
	return row
}

func horseRow(r models.Horse, fields []string) map[string]any {
	row := make(map[string]any)
	addFields(row, map[string]any{
		"horse_id": r.HorseID,
		"horse":    r.Horse,
		"sex":      r.Sex,
		"colour":   r.Colour,
		"sire":     r.Sire,
		"dam":      r.Dam,
	}, fields)
	return row
}

func jockeyRow(r models.Jockey, fields []string) map[string]any {
	row := make(map[string]any)
	addFields(row, map[string]any{
		"jockey_id": r.JockeyID,
		"jockey":    r.Jockey,
	}, fields)
	return row
}

func trainerRow(r models.Trainer, fields []string) map[string]any {
	row := make(map[string]any)
	addFields(row, map[string]any{
		"trainer_id": r.TrainerID,
		"trainer":    r.Trainer,
	}, fields)
	return row
}

func ownerRow(r models.Owner, fields []string) map[string]any {
	row := make(map[string]any)
	addFields(row, map[string]any{
		"owner_id": r.OwnerID,
		"owner":    r.Owner,
	}, fields)
	return row
}

// resultRow folds in the joined race and course context before the field
// projection, so a result line always says where and when it happened.
func resultRow(r models.Result, fields []string) map[string]any {
	row := make(map[string]any)
	if r.Race != nil {
		row["race_name"] = r.Race.RaceName
		row["date"] = r.Race.Date
		row["distance"] = r.Race.Distance
		row["going"] = r.Race.Going
		row["type"] = r.Race.Type
		row["race_class"] = r.Race.RaceClass
		if r.Race.Course != nil {
			row["course"] = r.Race.Course.Course
		}
	}
	addFields(row, map[string]any{
		"result_id": r.ResultID,
		"race_id":   r.RaceID,
		"horse_id":  r.HorseID,
		"position":  r.Position,
		"sp":        r.SP,
		"sp_dec":    r.SPDec,
		"btn":       r.Btn,
		"time":      r.Time,
		"prize":     r.Prize,
	}, fields)
	return row
}

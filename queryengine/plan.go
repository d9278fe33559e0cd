package queryengine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Condition is one predicate on one field. Exactly one of the members is
// set.
type Condition struct {
	// Exact matches the field verbatim.
	Exact string
	// Contains matches a substring.
	Contains string
	// Range is an inclusive [min, max] pair, normalized to strings.
	Range []string
}

// TableFilter is the plan for one table: predicates keyed by field name
// plus the sort/limit/fields controls that share their JSON level.
type TableFilter struct {
	Conditions map[string]Condition
	Sort       []string
	Limit      int
	Fields     []string
}

// FilterPlan is the decoded planner output.
type FilterPlan struct {
	Filters map[string]TableFilter `json:"filters"`
	Content []string               `json:"content"`
}

// UnmarshalJSON separates the reserved control keys from field predicates,
// which the planner emits at the same object level.
func (f *TableFilter) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.Conditions = make(map[string]Condition)

	for key, val := range raw {
		switch key {
		case "sort":
			if err := json.Unmarshal(val, &f.Sort); err != nil {
				return fmt.Errorf("sort: %w", err)
			}
		case "limit":
			var n float64
			if err := json.Unmarshal(val, &n); err != nil {
				return fmt.Errorf("limit: %w", err)
			}
			f.Limit = int(n)
		case "fields":
			if err := json.Unmarshal(val, &f.Fields); err != nil {
				return fmt.Errorf("fields: %w", err)
			}
		default:
			cond, err := parseCondition(val)
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			f.Conditions[key] = cond
		}
	}
	return nil
}

func parseCondition(raw json.RawMessage) (Condition, error) {
	var obj struct {
		Range    []any  `json:"range"`
		Contains string `json:"contains"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (len(obj.Range) > 0 || obj.Contains != "") {
		if obj.Contains != "" {
			return Condition{Contains: obj.Contains}, nil
		}
		if len(obj.Range) != 2 {
			return Condition{}, fmt.Errorf("range needs [min, max], got %d values", len(obj.Range))
		}
		bounds := make([]string, 2)
		for i, v := range obj.Range {
			s, ok := scalarString(v)
			if !ok {
				return Condition{}, fmt.Errorf("range bound %v is not a scalar", v)
			}
			bounds[i] = s
		}
		return Condition{Range: bounds}, nil
	}

	var scalar any
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return Condition{}, err
	}
	s, ok := scalarString(scalar)
	if !ok {
		return Condition{}, fmt.Errorf("unsupported condition %s", string(raw))
	}
	return Condition{Exact: s}, nil
}

// scalarString normalizes a decoded JSON scalar to its string form.
// Integral floats lose the trailing ".0" so that a model answering 3.0
// still matches rows stored as "3".
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// DecodePlan parses the raw planner output and applies the known model
// quirks: the planner sometimes writes "grade" for the Race class column.
func DecodePlan(raw json.RawMessage) (*FilterPlan, error) {
	var plan FilterPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("decode filter plan: %w", err)
	}

	if race, ok := plan.Filters["Race"]; ok {
		if cond, ok := race.Conditions["grade"]; ok {
			delete(race.Conditions, "grade")
			race.Conditions["race_class"] = cond
		}
		for i, f := range race.Fields {
			if f == "grade" {
				race.Fields[i] = "race_class"
			}
		}
		if len(race.Sort) == 2 && race.Sort[0] == "grade" {
			race.Sort[0] = "race_class"
		}
		plan.Filters["Race"] = race
	}
	return &plan, nil
}

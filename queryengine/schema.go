// Package queryengine turns model-produced filter plans into table reads
// and shapes the rows for rendering.
package queryengine

import (
	"encoding/json"
	"sort"
)

// Relationship is a one-hop join from one table to another.
type Relationship struct {
	Table     string `json:"table"`
	JoinField string `json:"join_field"`
	Required  bool   `json:"required"`
}

// TableInfo describes one queryable table. The executor validates plans
// against it and the planner prompt is built from it, so there is exactly
// one description of the schema.
type TableInfo struct {
	Description    string            `json:"description"`
	Fields         map[string]string `json:"fields"`
	RequiredFields []string          `json:"required_fields"`
	Relationships  []Relationship    `json:"relationships,omitempty"`
}

var schema = map[string]TableInfo{
	"Course": {
		Description: "Represents a racecourse where races take place",
		Fields: map[string]string{
			"course_id":   "Primary key - Unique identifier for the course",
			"course":      "Name of the course",
			"region_code": "Code representing the region",
			"region":      "Name of the region",
		},
		RequiredFields: []string{"course_id", "course"},
	},
	"Race": {
		Description: "Represents a specific race event",
		Fields: map[string]string{
			"race_id":    "Primary key - Unique identifier for the race",
			"course_id":  "Foreign key - Reference to the course where the race takes place",
			"date":       "Date of the race (YYYY-MM-DD)",
			"off_time":   "Scheduled start time of the race",
			"race_name":  "Name of the race",
			"distance":   "Race distance",
			"distance_f": "Race distance in furlongs",
			"region":     "Region where the race takes place",
			"type":       "Type of race (e.g., Handicap, Maiden)",
			"going":      "Track condition (e.g., Good, Soft)",
			"race_class": "Race grade/class (e.g., Group 1, Class 2)",
		},
		RequiredFields: []string{"race_id", "date", "race_name", "course_id", "distance", "going", "type", "race_class"},
		Relationships: []Relationship{
			{Table: "Course", JoinField: "course_id", Required: true},
		},
	},
	"Horse": {
		Description: "Represents a racehorse",
		Fields: map[string]string{
			"horse_id": "Primary key - Unique identifier for the horse",
			"horse":    "Name of the horse",
			"sex":      "Sex of the horse",
			"colour":   "Colour of the horse",
			"sire":     "Name of the sire",
			"dam":      "Name of the dam",
		},
		RequiredFields: []string{"horse_id", "horse"},
	},
	"Jockey": {
		Description: "Represents a jockey who rides horses in races",
		Fields: map[string]string{
			"jockey_id": "Primary key - Unique identifier for the jockey",
			"jockey":    "Name of the jockey",
		},
		RequiredFields: []string{"jockey_id", "jockey"},
	},
	"Trainer": {
		Description: "Represents a horse trainer",
		Fields: map[string]string{
			"trainer_id": "Primary key - Unique identifier for the trainer",
			"trainer":    "Name of the trainer",
		},
		RequiredFields: []string{"trainer_id", "trainer"},
	},
	"Owner": {
		Description: "Represents a horse owner",
		Fields: map[string]string{
			"owner_id": "Primary key - Unique identifier for the owner",
			"owner":    "Name of the owner",
		},
		RequiredFields: []string{"owner_id", "owner"},
	},
	"Result": {
		Description: "Represents the result of a horse in a race",
		Fields: map[string]string{
			"result_id": "Primary key - Unique identifier for the result",
			"race_id":   "Foreign key - Reference to the race",
			"horse_id":  "Foreign key - Reference to the horse",
			"position":  "Finishing position",
			"sp":        "Starting price (fractional)",
			"sp_dec":    "Starting price as decimal",
			"btn":       "Beaten distance",
			"time":      "Race completion time",
			"prize":     "Prize money won",
		},
		RequiredFields: []string{"result_id", "race_id", "horse_id", "position"},
		Relationships: []Relationship{
			{Table: "Race", JoinField: "race_id", Required: true},
			{Table: "Horse", JoinField: "horse_id", Required: true},
		},
	},
}

// Schema returns the table catalog.
func Schema() map[string]TableInfo {
	return schema
}

// SchemaContext renders the catalog as JSON for the planner prompt, with
// table names in stable order.
func SchemaContext() string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	type entry struct {
		Name string `json:"name"`
		TableInfo
	}
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, entry{Name: name, TableInfo: schema[name]})
	}
	b, _ := json.MarshalIndent(map[string]any{"tables": entries}, "", "  ")
	return string(b)
}

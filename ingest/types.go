package ingest

import (
	"errors"

	"github.com/conorwd/raceql/models"
)

// EntityType names one ingestible payload shape.
type EntityType string

const (
	EntityCourses        EntityType = "courses"
	EntityRacecards      EntityType = "racecards"
	EntityResults        EntityType = "results"
	EntityOdds           EntityType = "odds"
	EntityHorseDetail    EntityType = "horse_detail"
	EntityJockeyResults  EntityType = "jockey_results"
	EntityTrainerResults EntityType = "trainer_results"
)

// ErrUnknownEntity is returned for an entity type outside the known set.
var ErrUnknownEntity = errors.New("unknown entity type")

// SyncOutcome summarizes one ingestion call.
type SyncOutcome struct {
	Endpoint string   `json:"endpoint"`
	Records  int      `json:"records_processed"`
	Failures []string `json:"failures,omitempty"`
}

// Status collapses the outcome into the audit-log status string.
func (o SyncOutcome) Status() string {
	switch {
	case len(o.Failures) == 0:
		return "success"
	case o.Records > 0:
		return "partial"
	default:
		return "failed"
	}
}

// CoursesPayload is the upstream "courses" document.
type CoursesPayload struct {
	Courses []CourseRecord `json:"courses"`
}

// CourseRecord is one course as the API returns it.
type CourseRecord struct {
	ID         string `json:"id"`
	Course     string `json:"course"`
	RegionCode string `json:"region_code"`
	Region     string `json:"region"`
}

// RacecardsPayload is the upstream "racecards" document.
type RacecardsPayload struct {
	Racecards []Racecard `json:"racecards"`
}

// Racecard is one race plus its declared runners.
type Racecard struct {
	RaceID        string       `json:"race_id"`
	CourseID      string       `json:"course_id"`
	Course        string       `json:"course"`
	Date          string       `json:"date"`
	OffTime       string       `json:"off_time"`
	RaceName      string       `json:"race_name"`
	Distance      string       `json:"distance"`
	DistanceF     string       `json:"distance_f"`
	Region        string       `json:"region"`
	Pattern       string       `json:"pattern"`
	RaceClass     string       `json:"race_class"`
	Type          string       `json:"type"`
	AgeBand       string       `json:"age_band"`
	RatingBand    string       `json:"rating_band"`
	Prize         string       `json:"prize"`
	FieldSize     string       `json:"field_size"`
	Going         string       `json:"going"`
	GoingDetailed string       `json:"going_detailed"`
	Surface       string       `json:"surface"`
	Jumps         string       `json:"jumps"`
	BigRace       bool         `json:"big_race"`
	IsAbandoned   bool         `json:"is_abandoned"`
	Runners       []CardRunner `json:"runners"`
}

// CardRunner is one declared runner on a racecard, flattened with the
// horse/trainer/jockey/owner reference fields it carries.
type CardRunner struct {
	HorseID         string `json:"horse_id"`
	Horse           string `json:"horse"`
	DOB             string `json:"dob"`
	Age             string `json:"age"`
	Sex             string `json:"sex"`
	SexCode         string `json:"sex_code"`
	Colour          string `json:"colour"`
	Region          string `json:"region"`
	Dam             string `json:"dam"`
	DamID           string `json:"dam_id"`
	Sire            string `json:"sire"`
	SireID          string `json:"sire_id"`
	Damsire         string `json:"damsire"`
	DamsireID       string `json:"damsire_id"`
	TrainerID       string `json:"trainer_id"`
	Trainer         string `json:"trainer"`
	TrainerLocation string `json:"trainer_location"`
	TrainerRTF      string `json:"trainer_rtf"`
	JockeyID        string `json:"jockey_id"`
	Jockey          string `json:"jockey"`
	OwnerID         string `json:"owner_id"`
	Owner           string `json:"owner"`
	Number          string `json:"number"`
	Draw            string `json:"draw"`
	Headgear        string `json:"headgear"`
	HeadgearRun     string `json:"headgear_run"`
	WindSurgery     string `json:"wind_surgery"`
	WindSurgeryRun  string `json:"wind_surgery_run"`
	Lbs             string `json:"lbs"`
	Ofr             string `json:"ofr"`
	RPR             string `json:"rpr"`
	TS              string `json:"ts"`
	LastRun         string `json:"last_run"`
	Form            string `json:"form"`
	Comment         string `json:"comment"`
	Spotlight       string `json:"spotlight"`
	SilkURL         string `json:"silk_url"`
	IsNonRunner     bool   `json:"is_non_runner"`
}

// ResultsPayload is the upstream "results" document.
type ResultsPayload struct {
	Results []RaceResult `json:"results"`
}

// RaceResult is one completed race plus its finishers. Field names follow
// the results endpoint, which abbreviates differently from racecards.
type RaceResult struct {
	RaceID    string         `json:"race_id"`
	CourseID  string         `json:"course_id"`
	Course    string         `json:"course"`
	Region    string         `json:"region"`
	Date      string         `json:"date"`
	Off       string         `json:"off"`
	RaceName  string         `json:"race_name"`
	Dist      string         `json:"dist"`
	DistF     string         `json:"dist_f"`
	Type      string         `json:"type"`
	RaceClass string         `json:"class"`
	Going     string         `json:"going"`
	Runners   []ResultRunner `json:"runners"`
}

// ResultRunner is one finisher's line in a race result. RaceID is empty
// when the line is nested under a RaceResult and set when it arrives flat
// in a jockey or trainer results document.
type ResultRunner struct {
	RaceID    string `json:"race_id,omitempty"`
	HorseID   string `json:"horse_id"`
	Horse     string `json:"horse"`
	JockeyID  string `json:"jockey_id"`
	Jockey    string `json:"jockey"`
	TrainerID string `json:"trainer_id"`
	Trainer   string `json:"trainer"`
	OwnerID   string `json:"owner_id"`
	Owner     string `json:"owner"`
	SP        string `json:"sp"`
	SPDec     string `json:"sp_dec"`
	Number    string `json:"number"`
	Position  string `json:"position"`
	Draw      string `json:"draw"`
	Btn       string `json:"btn"`
	OvrBtn    string `json:"ovr_btn"`
	Age       string `json:"age"`
	Sex       string `json:"sex"`
	Weight    string `json:"weight"`
	WeightLbs string `json:"weight_lbs"`
	Headgear  string `json:"headgear"`
	Time      string `json:"time"`
	Or        string `json:"or"`
	RPR       string `json:"rpr"`
	TSR       string `json:"tsr"`
	Prize     string `json:"prize"`
	Comment   string `json:"comment"`
	SilkURL   string `json:"silk_url"`
}

// OddsPayload is the upstream "odds" document for one runner: quotes keyed
// by bookmaker name.
type OddsPayload struct {
	RaceID  string                  `json:"race_id"`
	HorseID string                  `json:"horse_id"`
	Odds    map[string]models.Quote `json:"odds"`
}

// HorseDetailPayload is the horses/{id}/{tier} document.
type HorseDetailPayload struct {
	HorseID        string             `json:"horse_id"`
	Horse          string             `json:"horse"`
	DOB            string             `json:"dob"`
	Age            string             `json:"age"`
	Sex            string             `json:"sex"`
	SexCode        string             `json:"sex_code"`
	Colour         string             `json:"colour"`
	Region         string             `json:"region"`
	Breeder        string             `json:"breeder"`
	Dam            string             `json:"dam"`
	DamID          string             `json:"dam_id"`
	DamRegion      string             `json:"dam_region"`
	Sire           string             `json:"sire"`
	SireID         string             `json:"sire_id"`
	SireRegion     string             `json:"sire_region"`
	Damsire        string             `json:"damsire"`
	DamsireID      string             `json:"damsire_id"`
	DamsireRegion  string             `json:"damsire_region"`
	MedicalHistory []MedicalRecord    `json:"medical_history"`
	Quotes         []PressQuoteRecord `json:"quotes"`
}

// MedicalRecord is one medical event in a horse detail document.
type MedicalRecord struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

// PressQuoteRecord is one press quote in a horse detail document.
type PressQuoteRecord struct {
	Date      string `json:"date"`
	Race      string `json:"race"`
	Course    string `json:"course"`
	CourseID  string `json:"course_id"`
	DistanceF string `json:"distance_f"`
	Quote     string `json:"quote"`
}

// JockeyResultsPayload is the jockeys/{id}/results document.
type JockeyResultsPayload struct {
	JockeyResults []JockeyResults `json:"jockey_results"`
}

// JockeyResults pairs one jockey with their result lines.
type JockeyResults struct {
	JockeyID  string         `json:"jockey_id"`
	Jockey    string         `json:"jockey"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Type      string         `json:"type"`
	Results   []ResultRunner `json:"results"`
}

// TrainerResultsPayload is the trainers/{id}/results document.
type TrainerResultsPayload struct {
	TrainerResults []TrainerResults `json:"trainer_results"`
}

// TrainerResults pairs one trainer with their result lines.
type TrainerResults struct {
	TrainerID       string         `json:"trainer_id"`
	Trainer         string         `json:"trainer"`
	TrainerLocation string         `json:"trainer_location"`
	Results         []ResultRunner `json:"results"`
}

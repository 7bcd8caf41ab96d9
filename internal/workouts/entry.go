package workouts

import "time"

const (
	DayKeyPrefix     = "workout_"
	SchemaVersionKey = "workouts_schema_version"
	// single-collection layout used before entries were split per day
	LegacyCollectionKey = "@muscuapp_workouts"

	CurrentSchemaVersion = 1
)

// Entry is one logged exercise: sets x reps at a given weight on a calendar day.
// The JSON field names are the persisted schema.
type Entry struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	ExerciseID   string  `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight"`
	Notes        string  `json:"notes,omitempty"`
}

// Volume is sets * reps * weight; 0 for body weight entries.
func (e Entry) Volume() float64 {
	return float64(e.Sets*e.Reps) * e.Weight
}

type EntryInput struct {
	Date         string  `json:"date"`
	ExerciseID   string  `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight"`
	Notes        string  `json:"notes,omitempty"`
}

type Export struct {
	SchemaVersion int       `json:"schemaVersion"`
	ExportedAt    time.Time `json:"exportedAt"`
	Entries       []Entry   `json:"entries"`
}

type DaySummary struct {
	ExerciseCount int     `json:"exerciseCount"`
	TotalSets     int     `json:"totalSets"`
	TotalReps     int     `json:"totalReps"`
	TotalVolume   float64 `json:"totalVolume"`
}

// SummarizeDay totals a single day's entries. Reps are counted per set.
func SummarizeDay(entries []Entry) DaySummary {
	s := DaySummary{
		ExerciseCount: len(entries),
	}
	for _, e := range entries {
		s.TotalSets += e.Sets
		s.TotalReps += e.Sets * e.Reps
		s.TotalVolume += e.Volume()
	}
	return s
}

package workouts

import (
	"math"
	"strings"

	"github.com/2beens/gymlog/internal/dates"
)

// validateStructure enforces what every stored entry must satisfy.
func validateStructure(in EntryInput) error {
	if strings.TrimSpace(in.ExerciseID) == "" {
		return &ValidationError{Field: "exerciseId", Message: MsgNoExercise}
	}
	if _, err := dates.ParseDayKey(in.Date); err != nil {
		return &ValidationError{Field: "date", Message: MsgInvalidDate}
	}
	if in.Sets <= 0 {
		return &ValidationError{Field: "sets", Message: MsgInvalidSets}
	}
	if in.Reps <= 0 {
		return &ValidationError{Field: "reps", Message: MsgInvalidReps}
	}
	if in.Weight < 0 || math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return &ValidationError{Field: "weight", Message: MsgInvalidWeight}
	}
	return nil
}

// ValidateInput applies the add-entry form rules. A weighted entry needs a
// load above zero; an unweighted one is stored with weight 0 (body weight).
func ValidateInput(in EntryInput, weighted bool) error {
	if err := validateStructure(in); err != nil {
		return err
	}
	if weighted && in.Weight <= 0 {
		return &ValidationError{Field: "weight", Message: MsgInvalidWeight}
	}
	return nil
}

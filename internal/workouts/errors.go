package workouts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidEntry = errors.New("invalid workout entry")
	ErrCorruptData  = errors.New("corrupt workout data")
)

const (
	MsgNoExercise    = "Veuillez sélectionner un exercice"
	MsgInvalidDate   = "Veuillez choisir une date valide (AAAA-MM-JJ)"
	MsgInvalidSets   = "Veuillez saisir un nombre de séries valide (> 0)"
	MsgInvalidReps   = "Veuillez saisir un nombre de répétitions valide (> 0)"
	MsgInvalidWeight = `Veuillez saisir un poids valide (> 0) ou décocher "Avec poids"`
	MsgAddFailed     = "Impossible d'ajouter l'exercice"
	MsgLoadFailed    = "Impossible de charger les données"
)

// ValidationError is a rejected entry input. Message is meant for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// CorruptDataError lists the stored day keys whose values could not be decoded.
type CorruptDataError struct {
	Keys []string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data in [%s]: %s", strings.Join(e.Keys, ", "), e.Err)
}

func (e *CorruptDataError) Is(target error) bool {
	return target == ErrCorruptData
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

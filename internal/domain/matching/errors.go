package matching

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("match not found")
	ErrForbidden    = errors.New("user is not a participant of this match")

	// ErrStateChanged lo devuelven los repos cuando el guard transaccional
	// encuentra el match en otro estado (p.ej. dos confirms concurrentes:
	// gana el primero que comitea, el segundo recibe esto).
	ErrStateChanged = errors.New("match state changed")
)

// TransitionError: se intentó una transición ilegal.
// Identifica estado actual vs solicitado para el mensaje al usuario.
type TransitionError struct {
	Current   MatchStatus
	Requested MatchStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: match is %s, requested %s", e.Current, e.Requested)
}

package projection

import "fmt"

// ErrInsufficientData is returned when the historical series contains no
// usable baseline year.
type ErrInsufficientData struct {
	Detail string
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient fundamental data: %s", e.Detail)
}

// ErrInvalidAssumption is returned when a projection assumption fails
// validation before any per-year computation begins.
type ErrInvalidAssumption struct {
	Field  string
	Reason string
}

func (e *ErrInvalidAssumption) Error() string {
	return fmt.Sprintf("invalid assumption %q: %s", e.Field, e.Reason)
}

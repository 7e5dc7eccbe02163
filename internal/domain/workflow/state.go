package workflow

import (
	"database/sql/driver"
	"fmt"
)

// Status is implemented by every closed status enum persisted by the workflow layer.
type Status interface {
	~string
	IsValid() bool
}

// statusValue maps a status to its storage representation, refusing values outside the enum.
func statusValue[S Status](s S) (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return string(s), nil
}

// scanStatus reads a stored status back, refusing strings that are not members of the enum.
func scanStatus[S Status](dst *S, src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidStatus, src)
	}

	s := S(raw)
	if !s.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	*dst = s
	return nil
}

// ParseStatus converts free text into a status of type S.
func ParseStatus[S Status](raw string) (S, error) {
	s := S(raw)
	if !s.IsValid() {
		var zero S
		return zero, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

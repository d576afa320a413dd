// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPosition reports a finish position that is neither a positive
// integer nor the literal DNF.
var ErrInvalidPosition = errors.New("invalid finish position")

// Position is a 1-based finish place. The zero value is DNF.
type Position int

// DNF marks a rider that did not finish.
const DNF Position = 0

const dnfLiteral = "DNF"

// IsDNF reports whether p carries no classified place.
func (p Position) IsDNF() bool { return p <= 0 }

// Int returns the numeric place, 0 for DNF.
func (p Position) Int() int {
	if p.IsDNF() {
		return 0
	}
	return int(p)
}

func (p Position) String() string {
	if p.IsDNF() {
		return dnfLiteral
	}
	return strconv.Itoa(int(p))
}

// ParsePosition accepts "DNF" (any case, surrounding space ignored) or a
// positive integer.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, dnfLiteral) {
		return DNF, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return DNF, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return Position(n), nil
}

// MarshalJSON encodes DNF as the string "DNF" and places as numbers.
func (p Position) MarshalJSON() ([]byte, error) {
	if p.IsDNF() {
		return []byte(`"` + dnfLiteral + `"`), nil
	}
	return []byte(strconv.Itoa(int(p))), nil
}

// UnmarshalJSON accepts a number or a quoted position.
func (p *Position) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	pos, err := ParsePosition(s)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

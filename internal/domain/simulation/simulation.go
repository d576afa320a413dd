// Package simulation produces reproducible finish positions for bots in
// events they did not ride.
//
// Seeds, draws and positions must match historical standings exactly. The
// hash wraps like a 32-bit integer and the scramble uses the fdlibm sine in
// sine.go rather than math.Sin.
package simulation

import (
	"math"
	"strconv"
	"unicode/utf16"
)

// DefaultFieldSize is the field size used when none is given.
const DefaultFieldSize = 50

const (
	offsetSpan = 20
	offsetBase = 10
	sineScale  = 10000
	hashFactor = 31
)

// expected maps a rating floor to the expected finish place, best first.
var expected = [...]struct{ minRating, position int }{
	{1400, 5},
	{1200, 12},
	{1000, 20},
	{800, 30},
}

const expectedFloor = 40

// Seed is the string hashed for a bot in an event.
func Seed(name string, eventNumber int) string {
	return name + "-" + strconv.Itoa(eventNumber)
}

// Hash folds the UTF-16 code units of seed into a wrapping 32-bit value.
func Hash(seed string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*hashFactor + int32(unit)
	}
	return h
}

// Draw returns the uniform value in [0,1) for name in eventNumber.
func Draw(name string, eventNumber int) float64 {
	h := Hash(Seed(name, eventNumber))
	x := sin(math.Abs(float64(h))) * sineScale
	return x - math.Floor(x)
}

// ExpectedPosition is the step function from rating to expected place.
func ExpectedPosition(rating int) int {
	for _, e := range expected {
		if rating >= e.minRating {
			return e.position
		}
	}
	return expectedFloor
}

// SimulatePosition returns the simulated place for a bot. A non-positive
// fieldSize falls back to DefaultFieldSize.
func SimulatePosition(name string, rating, eventNumber, fieldSize int) int {
	if fieldSize <= 0 {
		fieldSize = DefaultFieldSize
	}
	offset := int(math.Floor(Draw(name, eventNumber)*offsetSpan)) - offsetBase
	return clamp(ExpectedPosition(rating)+offset, 1, fieldSize)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

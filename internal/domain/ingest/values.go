package ingest

import (
	"strconv"
	"strings"
)

// lenientInt parses integers and integral floats, returning 0 otherwise.
func lenientInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// parseTimeSeconds accepts plain seconds or h:mm:ss / mm:ss with optional
// fractions. Unparseable values give 0.
func parseTimeSeconds(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if !strings.Contains(s, ":") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	var total float64
	for _, part := range strings.Split(s, ":") {
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0
		}
		total = total*60 + f
	}
	return total
}

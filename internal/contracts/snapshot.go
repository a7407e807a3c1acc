package contracts

import (
	"math"
	"strconv"
	"strings"
)

// InfoSnapshot is a typed optional lookup over the latest vendor snapshot.
// Missing or garbled fields are reported as absent, never as zero.
type InfoSnapshot struct {
	fields map[string]string
}

// NewInfoSnapshot wraps raw key → value pairs. A nil map yields an empty snapshot.
func NewInfoSnapshot(fields map[string]string) InfoSnapshot {
	return InfoSnapshot{fields: fields}
}

// Len returns the number of raw fields
func (s InfoSnapshot) Len() int {
	return len(s.fields)
}

// String returns a trimmed non-placeholder value
func (s InfoSnapshot) String(key string) (string, bool) {
	raw, ok := s.fields[key]
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(raw)
	if isPlaceholder(v) {
		return "", false
	}
	return v, true
}

// Float returns a finite numeric value
func (s InfoSnapshot) Float(key string) (float64, bool) {
	v, ok := s.String(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FirstFloat returns the first key holding a finite value
func (s InfoSnapshot) FirstFloat(keys ...string) (float64, string, bool) {
	for _, k := range keys {
		if f, ok := s.Float(k); ok {
			return f, k, true
		}
	}
	return 0, "", false
}

func isPlaceholder(v string) bool {
	switch strings.ToLower(v) {
	case "", "none", "null", "-", "n/a", "nan":
		return true
	}
	return false
}

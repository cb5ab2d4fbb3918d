package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitSeatList splits comma/semicolon separated seat strings into cleaned slices.
func SplitSeatList(raw string) []string {
	out := []string{}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, SeatKey(p))
	}
	return out
}

// SeatKey is the case-insensitive form seat numbers are compared in,
// matching the seats table collation.
func SeatKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeSeats turns seat numbers into seat keys, dropping blanks.
func NormalizeSeats(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = SeatKey(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasDuplicates reports whether any value appears twice.
func HasDuplicates(arr []string) bool {
	seen := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
	}
	return false
}

// JoinSeatList renders the seat summary stored on a booking.
func JoinSeatList(seats []string) string {
	return strings.Join(seats, ", ")
}

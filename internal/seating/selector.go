package seating

import (
	"sort"
	"strconv"
	"strings"

	"daladala/internal/domain"
)

// seatOrdinal returns the numeric value of a seat number, or ok=false
// for labels such as "A1" or "DRV".
func seatOrdinal(number string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortSeatNumbers orders seat numbers numerically. Non-numeric labels
// follow the numeric ones in lexical order.
func SortSeatNumbers(numbers []string) {
	sort.SliceStable(numbers, func(i, j int) bool {
		a, aok := seatOrdinal(numbers[i])
		b, bok := seatOrdinal(numbers[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return numbers[i] < numbers[j]
		}
	})
}

// Select picks n seats out of free. It prefers the first run of n
// strictly consecutive seat numbers and falls back to the first n free
// seats when no such run exists.
func Select(free []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, domain.ValidationError{Field: "passenger_count", Msg: "must be at least 1"}
	}
	if len(free) < n {
		return nil, domain.CapacityError{Requested: n, Available: len(free)}
	}

	ordered := append([]string(nil), free...)
	SortSeatNumbers(ordered)

	if n == 1 {
		return ordered[:1], nil
	}
	for start := 0; start+n <= len(ordered); start++ {
		if consecutive(ordered[start : start+n]) {
			return append([]string(nil), ordered[start:start+n]...), nil
		}
	}
	return append([]string(nil), ordered[:n]...), nil
}

func consecutive(window []string) bool {
	prev, ok := seatOrdinal(window[0])
	if !ok {
		return false
	}
	for _, s := range window[1:] {
		cur, ok := seatOrdinal(s)
		if !ok || cur != prev+1 {
			return false
		}
		prev = cur
	}
	return true
}

package helpers

import (
	"strconv"
)

// ParseID parses a positive int64 identifier from a path or query parameter.
// Returns 0 and false when the value is missing, non-numeric, or not positive.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ContainsID reports whether id is present in set
func ContainsID(set []int64, id int64) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strconv"
	"time"
)

// MinYear is the earliest publication year accepted.
const MinYear = 1500

var yearToken = regexp.MustCompile(`\b\d{4}\b`)

// Year returns the first 4-digit token of s within [MinYear, current year + 1].
func Year(s string) (int, bool) {
	return YearIn(s, time.Now().Year()+1)
}

// YearIn is Year with an explicit upper bound, for deterministic callers.
func YearIn(s string, max int) (int, bool) {
	for _, tok := range yearToken.FindAllString(s, -1) {
		y, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if y >= MinYear && y <= max {
			return y, true
		}
	}
	return 0, false
}

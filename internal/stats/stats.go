// Package stats computes the quick stats shown on the list page.
package stats

import (
	"strconv"
	"strings"

	"fishlog/internal/models"
)

// Count is the result of parsing an observation's free-text count field.
type Count struct {
	Value int
	OK    bool // false when the field was empty or not an integer
}

// ParseCount parses a count field, yielding a zero Count for anything that is not an integer.
func ParseCount(raw string) Count {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Count{}
	}
	return Count{Value: n, OK: true}
}

// Summary is the quick stats of one result set.
type Summary struct {
	TotalTrips        int    `json:"total_trips"`
	TotalFish         int    `json:"total_fish"`
	MostCommonSpecies string `json:"most_common_species,omitempty"`
}

// Summarize counts trips and fish and picks the most frequent species.
// Ties go to the species that appeared first in rows.
func Summarize(rows []models.Observation) Summary {
	s := Summary{TotalTrips: len(rows)}

	counts := make(map[string]int)
	var order []string
	for _, r := range rows {
		s.TotalFish += ParseCount(r.Count).Value

		if r.Species == "" {
			continue
		}
		if _, seen := counts[r.Species]; !seen {
			order = append(order, r.Species)
		}
		counts[r.Species]++
	}

	best := 0
	for _, sp := range order {
		if counts[sp] > best {
			best = counts[sp]
			s.MostCommonSpecies = sp
		}
	}
	return s
}

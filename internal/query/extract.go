package query

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultCount is the number of recipes used when the query names none.
const DefaultCount = 5

// DefaultCuisine is returned when no cuisine keyword is found.
const DefaultCuisine = "international"

var digits = regexp.MustCompile(`\d+`)

// ExtractCount returns the first run of digits in the query as the requested
// recipe count. Any digits count, so "top 3-ingredient pasta" asks for 3.
// Queries without a usable positive number get fallback.
func ExtractCount(query string, fallback int) int {
	m := digits.FindString(query)
	if m == "" {
		return fallback
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// cuisineKeywords is checked in order; the first cuisine with a matching keyword wins.
var cuisineKeywords = []struct {
	cuisine  string
	keywords []string
}{
	{"italian", []string{"italian", "italy"}},
	{"mexican", []string{"mexican", "mexico"}},
	{"chinese", []string{"chinese", "china"}},
	{"indian", []string{"indian", "india"}},
	{"french", []string{"french", "france"}},
	{"thai", []string{"thai", "thailand"}},
	{"japanese", []string{"japanese", "japan"}},
	{"mediterranean", []string{"mediterranean"}},
	{"american", []string{"american", "usa"}},
	{"spanish", []string{"spanish", "spain"}},
}

// ExtractCuisine finds a cuisine keyword anywhere in the query, case-insensitively.
func ExtractCuisine(query string) string {
	q := strings.ToLower(query)
	for _, c := range cuisineKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(q, kw) {
				return c.cuisine
			}
		}
	}
	return DefaultCuisine
}

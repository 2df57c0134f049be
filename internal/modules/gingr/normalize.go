package gingr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tailtown/internal/domain"
)

// Candidate is the cleaned-up result of parsing a free-text lodging
// label from Gingr: a canonical resource name plus a type guess.
type Candidate struct {
	Name string
	Type domain.ResourceType
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	unitNumber    = regexp.MustCompile(`(\d+)`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// kindPrefixes maps the lodging noun to the letter prefix used in
// canonical resource names ("Suite 12" -> "S12").
var kindPrefixes = map[string]string{
	"suite":   "S",
	"kennel":  "K",
	"run":     "R",
	"cabin":   "C",
	"condo":   "C",
	"bath":    "B",
	"station": "B",
	"room":    "S",
}

// typeKeywords classify the label before the generic noun is examined;
// order matters, first hit wins.
var typeKeywords = []struct {
	word string
	typ  domain.ResourceType
}{
	{"vip", domain.ResourceVIP},
	{"luxury", domain.ResourceVIP},
	{"premium", domain.ResourceVIP},
	{"plus", domain.ResourcePlus},
	{"deluxe", domain.ResourcePlus},
	{"bath", domain.ResourceBathing},
	{"groom", domain.ResourceBathing},
	{"spa", domain.ResourceBathing},
}

// Normalize turns a raw Gingr lodging label into a canonical resource
// name and type guess. Labels observed in exports look like
// "Luxury Suite #12", "K-09 Indoor", "VIP 3 (Large)", "Bath Station 2";
// parsing is inherently fuzzy external-data cleanup and stays isolated
// here. Returns false when no unit number can be found, which means the
// label cannot be mapped onto a bookable unit.
func Normalize(raw string) (Candidate, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Candidate{}, false
	}
	s = parenthetical.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "#", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = nonAlnum.ReplaceAllString(s, " ")

	numMatch := unitNumber.FindString(s)
	if numMatch == "" {
		return Candidate{}, false
	}
	num, err := strconv.Atoi(numMatch)
	if err != nil || num <= 0 {
		return Candidate{}, false
	}

	typ := domain.ResourceStandard
	for _, kw := range typeKeywords {
		if strings.Contains(s, kw.word) {
			typ = kw.typ
			break
		}
	}

	prefix := ""
	for _, field := range strings.Fields(s) {
		if p, ok := kindPrefixes[field]; ok {
			prefix = p
			break
		}
	}
	if prefix == "" {
		// Bare codes like "k 09": use the leading letter when there is one.
		for _, field := range strings.Fields(s) {
			if len(field) == 1 && field[0] >= 'a' && field[0] <= 'z' {
				prefix = strings.ToUpper(field)
				break
			}
		}
	}
	if prefix == "" {
		if typ == domain.ResourceBathing {
			prefix = "B"
		} else {
			prefix = "S"
		}
	}
	if typ == domain.ResourceBathing {
		prefix = "B"
	}

	return Candidate{
		Name: fmt.Sprintf("%s%02d", prefix, num),
		Type: typ,
	}, true
}

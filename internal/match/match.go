// internal/match/match.go
// Package match implements the tolerant field comparison and the per-document
// scoring rule used by every benchmark aggregate.
package match

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts lists the accepted date formats: ISO, European dotted, and slash.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// DatesMatch compares two optional date strings on calendar date.
// Both absent is a match; exactly one absent is not. Unparseable input never matches.
func DatesMatch(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	da, okA := parseDate(*a)
	db, okB := parseDate(*b)
	if !okA || !okB {
		return false
	}
	return da.Equal(db)
}

func parseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NumbersMatch compares two optional numeric strings by value, so "1.00" and "1" match.
func NumbersMatch(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	fa, errA := strconv.ParseFloat(strings.TrimSpace(*a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(*b), 64)
	if errA != nil || errB != nil {
		return false
	}
	return fa == fb
}

// FieldsMatch compares two optional free-text fields after normalization:
// trimmed, underscores collapsed to spaces, case-folded.
func FieldsMatch(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return normalizeField(*a) == normalizeField(*b)
}

func normalizeField(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Expected is the ground-truth view the scorer needs for a single document.
type Expected struct {
	IsMatch        bool
	Date           *string
	SecondaryField *string
	PatientName    *string
}

// Score is the outcome of scoring one document against its ground truth.
type Score struct {
	CategorizationCorrect bool
	ExtractionCorrect     bool
	Points                int
}

// ScoreDocument applies the single scoring rule:
// wrong categorization scores 0, a correct negative scores 2 with nothing to
// extract, and a correct positive scores 2 when all extracted fields fuzzy-match
// the ground truth, otherwise 1.
func ScoreDocument(expected Expected, actualIsMatch bool, actualDate, actualSecondaryField, actualPatientName *string) Score {
	if actualIsMatch != expected.IsMatch {
		return Score{CategorizationCorrect: false, ExtractionCorrect: false, Points: 0}
	}
	if !expected.IsMatch {
		return Score{CategorizationCorrect: true, ExtractionCorrect: true, Points: 2}
	}
	extractionCorrect := DatesMatch(expected.Date, actualDate) &&
		FieldsMatch(expected.SecondaryField, actualSecondaryField) &&
		FieldsMatch(expected.PatientName, actualPatientName)
	points := 1
	if extractionCorrect {
		points = 2
	}
	return Score{CategorizationCorrect: true, ExtractionCorrect: extractionCorrect, Points: points}
}

// ParseYesNoResponse interprets a model's free-text answer as a boolean.
// True only for a normalized "ja" or a response beginning with "yes";
// everything else, including an empty response, is false.
func ParseYesNoResponse(response string) bool {
	normalized := strings.ToLower(strings.TrimSpace(response))
	normalized = strings.Trim(normalized, " \t\"'`.,;:!?")
	if normalized == "ja" {
		return true
	}
	return strings.HasPrefix(normalized, "yes")
}

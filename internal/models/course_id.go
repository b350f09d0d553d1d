package models

import (
	"regexp"
	"strings"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// ParsedCourseID holds the pieces derived from a canonical course identifier
// of the form "<type>-<branchcode><number>", e.g. "noc25-cs52".
type ParsedCourseID struct {
	Type   string `json:"type"`
	Branch string `json:"branch"`
	Number string `json:"number"`
}

// ParseCourseID derives type, branch and course number from a course
// identifier. Branch is empty when the identifier has no separator or the
// right-hand segment contains no letters; callers treat an empty branch as
// unclassified.
func ParseCourseID(courseID string) ParsedCourseID {
	courseID = strings.ToLower(strings.TrimSpace(courseID))

	separator := strings.Index(courseID, "-")
	if separator < 0 {
		return ParsedCourseID{Type: strings.ToUpper(courseID)}
	}

	courseType := strings.ToUpper(courseID[:separator])
	branchWithNum := courseID[separator+1:]

	branch := strings.ToUpper(digitsPattern.ReplaceAllString(branchWithNum, ""))
	if !hasLetter(branch) {
		branch = ""
	}

	number := digitsPattern.FindString(branchWithNum)

	return ParsedCourseID{Type: courseType, Branch: branch, Number: number}
}

// Unclassified reports whether the identifier failed to yield a branch code.
func (p ParsedCourseID) Unclassified() bool {
	return p.Branch == ""
}

// WeekOrdinal extracts the numeric ordinal from a week label such as
// "Week 4 Assignment". Labels without a parseable number yield 0 so that
// legacy free-text labels still sort deterministically.
func WeekOrdinal(label string) int {
	match := digitsPattern.FindString(label)
	if match == "" {
		return 0
	}

	ordinal := 0
	for _, r := range match {
		ordinal = ordinal*10 + int(r-'0')
	}

	return ordinal
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status tags a log line. Higher values are worse.
type Status int

const (
	StatusInfo Status = iota
	StatusPass
	StatusSkip
	StatusWarning
	StatusFail
)

var statusNames = map[Status]string{
	StatusInfo:    "info",
	StatusPass:    "pass",
	StatusSkip:    "skip",
	StatusWarning: "warning",
	StatusFail:    "fail",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// Label is the display form, e.g. "Warning". A Caser keeps state, so each
// call gets its own.
func (s Status) Label() string { return cases.Title(language.English).String(s.String()) }

// Worse returns the more severe of s and o
func (s Status) Worse(o Status) Status {
	if o > s {
		return o
	}
	return s
}

// ParseStatus accepts the names produced by String
func ParseStatus(v string) (Status, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for s, n := range statusNames {
		if n == v {
			return s, true
		}
	}
	return StatusInfo, false
}

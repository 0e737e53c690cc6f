package fixtures

import (
	"fmt"
	"sort"
	"strings"
)

// Sample is a built-in fixture used by `shopcheck fixtures init` and tests
type Sample struct {
	Header []string
	Rows   [][]string
}

// LongEmail is 95 'a' characters followed by "@test.com" (104 characters)
var LongEmail = strings.Repeat("a", 95) + "@test.com"

var samples = map[string]Sample{
	"subscription": {
		Header: []string{"case", "email", "expected", "known_issue"},
		Rows: [][]string{
			{"valid email", "qa.subscriber@example.com", "Pass", ""},
			{"blank email", "(blank)", "Fail", ""},
			{"double at", "invalid@@", "Fail", ""},
			{"missing at", "invalid.example.com", "Fail", ""},
			{"missing domain", "user@", "Fail", ""},
			{"over-length", LongEmail, "Fail", ""},
			{"first subscription", "user@example.com", "Pass", ""},
			{"duplicate subscription", "user@example.com", "Fail", "site re-subscribes duplicate addresses without an error"},
		},
	},
	"signup": {
		Header: []string{"case", "name", "email", "expected"},
		Rows: [][]string{
			{"new user", "QA Tester", "qa.{{unique}}.{{row}}@example.com", "Pass"},
			{"blank name", "N/A", "qa.{{unique}}.{{row}}@example.com", "Fail"},
			{"blank email", "QA Tester", "(blank)", "Fail"},
			{"malformed email", "QA Tester", "qa.example.com", "Fail"},
			{"existing email", "QA Tester", "user@example.com", "Fail"},
		},
	},
	"login": {
		Header: []string{"case", "email", "password", "expected"},
		Rows: [][]string{
			{"unknown user", "nobody.{{unique}}@example.com", "wrong-password", "Fail"},
			{"blank password", "nobody@example.com", "(blank)", "Fail"},
			{"blank email", "(blank)", "secret", "Fail"},
		},
	},
	"contact": {
		Header: []string{"case", "name", "email", "subject", "message", "expected"},
		Rows: [][]string{
			{"complete message", "QA Tester", "qa@example.com", "Order question", "Where is my order?", "Pass"},
			{"blank email", "QA Tester", "(blank)", "Order question", "Where is my order?", "Fail"},
			{"malformed email", "QA Tester", "qa-at-example.com", "Order question", "Where is my order?", "Fail"},
		},
	},
	"search": {
		Header: []string{"case", "term", "expected"},
		Rows: [][]string{
			{"tops", "top", "Pass"},
			{"jeans", "jeans", "Pass"},
			{"no match", "zzzzzz-no-such-product", "Fail"},
		},
	},
	"review": {
		Header: []string{"case", "product", "name", "email", "review", "expected"},
		Rows: [][]string{
			{"complete review", "1", "QA Tester", "qa@example.com", "Fits well.", "Pass"},
			{"blank review", "1", "QA Tester", "qa@example.com", "(blank)", "Fail"},
		},
	},
}

// Samples lists the built-in sample names
func Samples() []string {
	names := make([]string, 0, len(samples))
	for n := range samples {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SampleFor returns a built-in sample by name
func SampleFor(name string) (Sample, error) {
	s, ok := samples[name]
	if !ok {
		return Sample{}, fmt.Errorf("no sample fixture %q (have %s)", name, strings.Join(Samples(), ", "))
	}
	return s, nil
}

// Table parses the sample into a Table
func (s Sample) Table(opts ...Option) (*Table, error) {
	records := append([][]string{s.Header}, s.Rows...)
	return FromRecords(records, opts...)
}

package report

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type junitSuite struct {
	XMLName   xml.Name    `xml:"testsuite"`
	Name      string      `xml:"name,attr"`
	ID        string      `xml:"id,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      string      `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr"`
	Cases     []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure,omitempty"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

func (r *Report) renderJUnit() ([]byte, error) {
	s := junitSuite{
		Name:      r.Name,
		ID:        r.ID,
		Timestamp: r.Started.Format("2006-01-02T15:04:05"),
	}

	var total float64
	for _, e := range r.entries {
		secs := e.durationLocked().Seconds()
		total += secs
		c := junitCase{
			Name:      e.Name,
			ClassName: r.Name,
			Time:      fmt.Sprintf("%.3f", secs),
		}

		var out strings.Builder
		for _, l := range e.lines {
			fmt.Fprintf(&out, "[%s] %s\n", l.Status, l.Message)
			if l.Image != nil && l.Image.Path != "" {
				fmt.Fprintf(&out, "[%s] screenshot: %s\n", l.Status, l.Image.Path)
			}
		}
		c.SystemOut = out.String()

		switch e.statusLocked() {
		case StatusFail:
			s.Failures++
			c.Failure = &junitMessage{Message: lastMessage(e, StatusFail)}
		case StatusSkip:
			s.Skipped++
			c.Skipped = &junitMessage{Message: lastMessage(e, StatusSkip)}
		}
		s.Cases = append(s.Cases, c)
	}
	s.Tests = len(s.Cases)
	s.Time = fmt.Sprintf("%.3f", total)

	body, err := xml.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render junit: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func lastMessage(e *Entry, status Status) string {
	for i := len(e.lines) - 1; i >= 0; i-- {
		if e.lines[i].Status == status {
			return e.lines[i].Message
		}
	}
	return ""
}

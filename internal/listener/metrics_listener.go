package listener

import "github.com/shopcheck-io/shopcheck/internal/metrics"

// MetricsListener feeds the Prometheus collectors
type MetricsListener struct {
	Base
	m *metrics.Metrics
}

// NewMetricsListener records into m
func NewMetricsListener(m *metrics.Metrics) *MetricsListener {
	return &MetricsListener{m: m}
}

func (l *MetricsListener) OnSuiteStart(s *Suite) { l.m.SuiteRun(s.Name) }

func (l *MetricsListener) observe(t *Test) {
	l.m.ObserveTest(t.Suite.Name, string(t.Outcome), t.Duration)
	if t.ShotErr != nil {
		l.m.ScreenshotFailed()
	}
}

func (l *MetricsListener) OnTestSuccess(t *Test) { l.observe(t) }

func (l *MetricsListener) OnTestFailure(t *Test) { l.observe(t) }

func (l *MetricsListener) OnTestSkip(t *Test) { l.observe(t) }

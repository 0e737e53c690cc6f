package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

const manifest = `
suites:
  - name: subscription
    description: footer subscription form
    scenario: subscription
    fixture: fixtures/subscription.csv
    required: [email]
  - name: login
    scenario: login
    fixture: /data/login.xlsx
    sheet: Login
    screenshots_on_pass: true
    vars:
      domain: example.com
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, manifest)
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "subscription"}, m.Names())

	sub, err := m.Find("subscription")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "fixtures", "subscription.csv"), sub.Fixture)
	assert.Equal(t, []string{"email"}, sub.Required)
	assert.False(t, sub.ScreenshotsOnPass)

	login, err := m.Find("login")
	require.NoError(t, err)
	assert.Equal(t, "/data/login.xlsx", login.Fixture)
	assert.Equal(t, "Login", login.Sheet)
	assert.True(t, login.ScreenshotsOnPass)
	assert.Equal(t, map[string]string{"domain": "example.com"}, login.Vars)

	_, err = m.Find("checkout")
	assert.ErrorIs(t, err, ErrSuiteNotFound)
}

func TestParseRejectsInvalidManifests(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"no suites":        "suites: []\n",
		"missing scenario": "suites:\n  - name: a\n    fixture: a.csv\n",
		"bad fixture type": "suites:\n  - name: a\n    scenario: login\n    fixture: a.json\n",
		"bad name":         "suites:\n  - name: Has Spaces\n    scenario: login\n    fixture: a.csv\n",
		"unknown key":      "suites:\n  - name: a\n    scenario: login\n    fixture: a.csv\n    retries: 3\n",
		"wrong type":       "suites:\n  - name: a\n    scenario: login\n    fixture: a.csv\n    screenshots_on_pass: sometimes\n",
		"duplicate":        "suites:\n  - {name: a, scenario: login, fixture: a.csv}\n  - {name: a, scenario: signup, fixture: b.csv}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}

	_, err := Parse([]byte("suites: [unclosed"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	m, err := Parse([]byte("suites:\n  - {name: a, scenario: login, fixture: a.csv}\n  - {name: b, scenario: checkout, fixture: b.csv}\n"))
	require.NoError(t, err)

	reg := scenario.NewRegistry()
	reg.Register("login", "", nil)
	err = m.Check(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `suite b: unknown scenario "checkout"`)
	assert.NotContains(t, err.Error(), "suite a")
}

func TestTableAndJob(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "subscription.xlsx")
	require.NoError(t, fixtures.Write(fixture, "Emails", []string{"email", "expected"}, [][]string{{"a@b.c", "Pass"}}))

	s := Suite{Name: "subscription", Scenario: "stub", Fixture: fixture, Sheet: "emails", Required: []string{"email"}, ScreenshotsOnPass: true}
	table, err := s.Table()
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	reg := scenario.NewRegistry()
	reg.Register("stub", "", func(scenario.Env) scenario.Scenario { return nil })
	job, err := s.Job(reg, scenario.Env{})
	require.NoError(t, err)
	assert.Equal(t, "subscription", job.Suite)
	assert.True(t, job.CaptureOnPass)
	assert.Equal(t, "a@b.c", job.Table.Rows[0].Get("email"))

	s.Required = []string{"email", "name"}
	_, err = s.Table()
	assert.ErrorIs(t, err, fixtures.ErrMissingColumns)

	s.Scenario = "missing"
	_, err = s.Job(reg, scenario.Env{})
	assert.Error(t, err)
}

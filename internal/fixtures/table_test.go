package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeXLSX(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, Write(path, "Subscription", header, rows))
	return path
}

func TestOpenXLSX(t *testing.T) {
	path := writeXLSX(t,
		[]string{"Case", "Email", "Expected Result"},
		[][]string{
			{"valid", "user@example.com", "Pass"},
			{"blank", "(blank)", "Fail"},
		},
	)

	table, err := Open(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Subscription", table.Sheet)
	assert.Equal(t, []string{"Case", "Email", "Expected Result"}, table.Columns)
	require.Equal(t, 2, table.Len())

	first := table.Rows[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "user@example.com", first.Get("email"))
	assert.Equal(t, "user@example.com", first.Get("EMAIL"))
	expected, err := first.Expected()
	require.NoError(t, err)
	assert.True(t, expected)

	t.Run("named sheet is case-insensitive", func(t *testing.T) {
		table, err := Open(path, "subscription")
		require.NoError(t, err)
		assert.Equal(t, "Subscription", table.Sheet)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := Open(path, "Login")
		assert.ErrorIs(t, err, ErrUnknownSheet)
	})
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.csv")
	content := "\n\ncase,email,password,expected\nbad,nobody@example.com,wrong,Fail\n,,,\nblank,, secret ,no\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := Open(path, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "", table.Sheet)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 4, table.Rows[1].Line)
	assert.Equal(t, 2, table.Rows[1].Index)
	assert.Equal(t, "secret", table.Rows[1].Get("password"))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("data.json", "")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("\n,,\n"))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestSentinelSubstitution(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(
		"email,expected\n" +
			"user@example.com,Pass\n" +
			"(blank),Fail\n" +
			"N/A,Fail\n" +
			"n/a,Fail\n" +
			"   ,Fail\n" +
			"null,Fail\n",
	))
	require.NoError(t, err)
	require.Equal(t, 6, table.Len())

	assert.Equal(t, "user@example.com", table.Rows[0].Get("email"))
	for _, row := range table.Rows[1:] {
		assert.Equal(t, "", row.Get("email"), "line %d", row.Line)
	}
	assert.Equal(t, "(blank)", table.Rows[1].Raw("email"))
}

func TestCustomSentinels(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("email\n(blank)\nEMPTY\n"), WithSentinels("EMPTY"))
	require.NoError(t, err)
	assert.Equal(t, "(blank)", table.Rows[0].Get("email"))
	assert.Equal(t, "", table.Rows[1].Get("email"))
}

func TestMalformedRowsNeverFail(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("name,email,expected\nonly-name\n"))
	require.NoError(t, err)
	row := table.Rows[0]

	assert.Equal(t, "only-name", row.Get("name"))
	assert.Equal(t, "", row.Get("email"))
	assert.Equal(t, "", row.Get("no_such_column"))
	assert.Equal(t, "", row.At(42))
	assert.Equal(t, "", row.At(-1))
}

func TestRequire(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Email,Expected\nx,Pass\n"))
	require.NoError(t, err)

	assert.NoError(t, table.Require("email", "expected"))
	err = table.Require("email", "name", "message")
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "name, message")
}

func TestExpected(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("expected\nPass\nfail\nTRUE\n0\nmaybe\n(blank)\n"))
	require.NoError(t, err)

	want := []bool{true, false, true, false}
	for i, w := range want {
		got, err := table.Rows[i].Expected()
		require.NoError(t, err)
		assert.Equal(t, w, got, "row %d", i+1)
	}
	_, err = table.Rows[4].Expected()
	assert.Error(t, err)
	_, err = table.Rows[5].Expected()
	assert.Error(t, err)

	noColumn, err := ReadCSV(strings.NewReader("email\nx\n"))
	require.NoError(t, err)
	_, err = noColumn.Rows[0].Expected()
	assert.Error(t, err)
}

func TestKnownIssueAndLabel(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("case,email,known_issue\nduplicate,a@b.c,site bug\n,x@y.z,\n"))
	require.NoError(t, err)

	assert.Equal(t, "site bug", table.Rows[0].KnownIssue())
	assert.Equal(t, "row 1 (duplicate)", table.Rows[0].Label())
	assert.Equal(t, "", table.Rows[1].KnownIssue())
	assert.Equal(t, "row 2", table.Rows[1].Label())

	personas, err := ReadCSV(strings.NewReader("name,email,expected\nQA Tester,qa@example.com,Pass\n"))
	require.NoError(t, err)
	assert.Equal(t, "row 1", personas.Rows[0].Label())
}

func TestDecode(t *testing.T) {
	type account struct {
		Name       string `fixture:"name"`
		Email      string `fixture:"email"`
		BirthDay   int    `fixture:"birth_day"`
		Newsletter bool   `fixture:"newsletter"`
		Offers     bool   `fixture:"offers"`
		Company    string `fixture:"company"`
	}

	table, err := ReadCSV(strings.NewReader(
		"Name,Email,Birth Day,Newsletter,Offers,Company\n" +
			"Jane,jane@example.com,7,yes,0,N/A\n" +
			"N,n@example.com,,x,no,ACME\n",
	))
	require.NoError(t, err)

	var a account
	require.NoError(t, Decode(table.Rows[0], &a))
	assert.Equal(t, account{Name: "Jane", Email: "jane@example.com", BirthDay: 7, Newsletter: true}, a)

	var b account
	require.NoError(t, Decode(table.Rows[1], &b))
	assert.Equal(t, "N", b.Name)
	assert.Equal(t, 0, b.BirthDay)
	assert.True(t, b.Newsletter)
	assert.False(t, b.Offers)
	assert.Equal(t, "ACME", b.Company)

	bad, err := ReadCSV(strings.NewReader("birth_day\nseventh\n"))
	require.NoError(t, err)
	var c account
	assert.Error(t, Decode(bad.Rows[0], &c))
}

func TestSamples(t *testing.T) {
	assert.Contains(t, Samples(), "subscription")
	assert.Len(t, LongEmail, 104)

	s, err := SampleFor("subscription")
	require.NoError(t, err)
	table, err := s.Table()
	require.NoError(t, err)
	require.NoError(t, table.Require("email", "expected"))

	var sawDuplicateIssue bool
	for _, row := range table.Rows {
		_, err := row.Expected()
		require.NoError(t, err, row.Label())
		if row.Get("email") == "user@example.com" && row.KnownIssue() != "" {
			sawDuplicateIssue = true
		}
	}
	assert.True(t, sawDuplicateIssue)

	_, err = SampleFor("checkout")
	assert.Error(t, err)
}

func TestWriteRoundTripKeepsSentinels(t *testing.T) {
	s, err := SampleFor("subscription")
	require.NoError(t, err)
	path := writeXLSX(t, s.Header, s.Rows)

	table, err := Open(path, "")
	require.NoError(t, err)
	require.Equal(t, len(s.Rows), table.Len())
	assert.Equal(t, "(blank)", table.Rows[1].Raw("email"))
	assert.Equal(t, "", table.Rows[1].Get("email"))
	assert.Equal(t, LongEmail, table.Rows[5].Get("email"))
}

func TestInterpolate(t *testing.T) {
	vars := map[string]string{"unique": "20261017"}
	assert.Equal(t, "qa.20261017@example.com", Interpolate("qa.{{unique}}@example.com", vars))
	assert.Equal(t, "plain@example.com", Interpolate("plain@example.com", vars))
	assert.Equal(t, "{{other}}", Interpolate("{{other}}", vars))
}

func TestRowVars(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("email\nqa.{{unique}}.{{row}}@example.com\n{{unique}}\n"))
	require.NoError(t, err)
	table.SetVars(map[string]string{"unique": "run7"})

	assert.Equal(t, "qa.run7.1@example.com", table.Rows[0].Get("email"))
	assert.Equal(t, "run7", table.Rows[1].Get("email"))
	assert.Equal(t, "{{unique}}", table.Rows[1].Raw("email"))
}

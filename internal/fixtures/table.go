// Package fixtures reads tabular test data (xlsx or csv) into rows that
// data-driven scenarios consume. One header row, then data rows.
package fixtures

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoHeader       = errors.New("fixture has no header row")
	ErrUnknownSheet   = errors.New("sheet not found")
	ErrUnsupported    = errors.New("unsupported fixture format")
	ErrMissingColumns = errors.New("required columns missing")
)

// DefaultSentinels mark a cell as intentionally blank
var DefaultSentinels = []string{"(blank)", "N/A", "null", "none", "-"}

// Table is one parsed sheet
type Table struct {
	Path    string
	Sheet   string
	Columns []string
	Rows    []Row

	index     map[string]int
	sentinels map[string]bool
	vars      map[string]string
}

// Row is one data row. Index is the 1-based position among data rows;
// Line is the 1-based record number in the source, header included.
type Row struct {
	Index  int
	Line   int
	values []string
	table  *Table
}

// Option tunes how a table is read
type Option func(*Table)

// WithSentinels replaces the blank markers (compared case-insensitively)
func WithSentinels(values ...string) Option {
	return func(t *Table) {
		t.sentinels = map[string]bool{}
		for _, v := range values {
			t.sentinels[strings.ToLower(strings.TrimSpace(v))] = true
		}
	}
}

// Open reads path. For xlsx, sheet selects the worksheet ("" = first sheet);
// it is ignored for csv.
func Open(path, sheet string, opts ...Option) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, sheet, err = readXLSX(path, sheet)
	case ".csv":
		records, err = readCSVFile(path)
		sheet = ""
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}

	t, err := FromRecords(records, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	t.Sheet = sheet
	return t, nil
}

// ReadCSV parses csv data from r
func ReadCSV(r io.Reader, opts ...Option) (*Table, error) {
	records, err := parseCSV(r)
	if err != nil {
		return nil, err
	}
	return FromRecords(records, opts...)
}

// FromRecords builds a table from raw records. Leading fully-empty rows are
// skipped; the first non-empty row is the header. Fully-empty data rows are
// dropped.
func FromRecords(records [][]string, opts ...Option) (*Table, error) {
	t := &Table{index: map[string]int{}}
	WithSentinels(DefaultSentinels...)(t)
	for _, opt := range opts {
		opt(t)
	}

	headerLine := -1
	for i, rec := range records {
		if !emptyRecord(rec) {
			headerLine = i
			break
		}
	}
	if headerLine < 0 {
		return nil, ErrNoHeader
	}

	for i, name := range records[headerLine] {
		name = strings.TrimSpace(name)
		t.Columns = append(t.Columns, name)
		key := normalizeColumn(name)
		if _, dup := t.index[key]; key != "" && !dup {
			t.index[key] = i
		}
	}

	for i := headerLine + 1; i < len(records); i++ {
		if emptyRecord(records[i]) {
			continue
		}
		t.Rows = append(t.Rows, Row{
			Index:  len(t.Rows) + 1,
			Line:   i + 1,
			values: records[i],
			table:  t,
		})
	}
	return t, nil
}

func readXLSX(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, "", fmt.Errorf("%s: %w", path, ErrNoHeader)
		}
		sheet = sheets[0]
	} else {
		found := false
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				sheet, found = s, true
				break
			}
		}
		if !found {
			return nil, "", fmt.Errorf("%s in %s: %w", sheet, path, ErrUnknownSheet)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, sheet, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

func emptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeColumn makes "Expected Result", "expected_result" and
// "EXPECTED-RESULT" the same key.
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// Has reports whether the header carries column
func (t *Table) Has(column string) bool {
	_, ok := t.index[normalizeColumn(column)]
	return ok
}

// Require fails with ErrMissingColumns naming every absent column
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// SetVars sets the values substituted for {{name}} placeholders. {{row}}
// always expands to the row index.
func (t *Table) SetVars(vars map[string]string) {
	t.vars = vars
}

// Len returns the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// Raw returns the literal cell value, trimmed. Missing columns and short
// rows give "".
func (r Row) Raw(column string) string {
	i, ok := r.table.index[normalizeColumn(column)]
	if !ok {
		return ""
	}
	return r.At(i)
}

// At returns the trimmed cell at a 0-based column index, "" when out of range
func (r Row) At(i int) string {
	if i < 0 || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

// Get returns the cell value with blank sentinels substituted by "" and
// {{placeholders}} expanded. It never fails: a malformed row yields empty
// values.
func (r Row) Get(column string) string {
	v := r.Raw(column)
	if r.table.sentinels[strings.ToLower(v)] {
		return ""
	}
	if strings.Contains(v, "{{") {
		v = Interpolate(v, r.table.vars)
		v = strings.ReplaceAll(v, "{{row}}", strconv.Itoa(r.Index))
	}
	return v
}

// Map returns every column with sentinel substitution applied
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.table.Columns))
	for _, c := range r.table.Columns {
		key := normalizeColumn(c)
		if key == "" {
			continue
		}
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = r.Get(c)
	}
	return out
}

// Label names the row for reports: "row 3" or "row 3 (scenario)" when a
// scenario or case column is present. A "name" column is persona data and
// never labels the row.
func (r Row) Label() string {
	for _, c := range []string{"case", "scenario", "test_case"} {
		if v := r.Get(c); v != "" {
			return fmt.Sprintf("row %d (%s)", r.Index, v)
		}
	}
	return fmt.Sprintf("row %d", r.Index)
}

// Interpolate replaces {{name}} placeholders with vars[name]. Unknown
// placeholders are left as they are.
func Interpolate(v string, vars map[string]string) string {
	if !strings.Contains(v, "{{") {
		return v
	}
	for k, val := range vars {
		v = strings.ReplaceAll(v, "{{"+k+"}}", val)
	}
	return v
}

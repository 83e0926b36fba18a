package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/record"
)

func people() []record.Object {
	return []record.Object{
		{"name": record.String("ann"), "age": record.Int(34), "admin": record.Bool(true),
			"tags": record.Array{record.String("ops"), record.String("dev")}},
		{"name": record.String("bob"), "age": record.Int(19), "admin": record.Bool(false)},
		{"name": record.String("cid"), "age": record.Null{}, "admin": record.Bool(false)},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.yaml", FormatYAML},
		{"a.YML", FormatYAML},
		{"dir/a.json", FormatJSON},
		{"a.cue", FormatCUE},
		{"a.db", FormatSQLite},
		{"a.sqlite3", FormatSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat("records.txt")
	assert.Equal(t, ErrCodeUnknownFormat, ErrorCode(err))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestLoadFixtures(t *testing.T) {
	for _, name := range []string{"people.yaml", "people.json", "people.cue"} {
		t.Run(name, func(t *testing.T) {
			got, err := Load(context.Background(), filepath.Join("testdata", name), Options{})
			require.NoError(t, err)
			if diff := cmp.Diff(people(), got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadWhereInMemory(t *testing.T) {
	where := queryir.Compare{Field: "age", Op: queryir.OpGt, Value: record.Int(20)}
	got, err := Load(context.Background(), "testdata/people.yaml", Options{Where: where})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, record.String("ann"), got[0]["name"])
}

func TestLoadYAMLShapes(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		got, err := Load(context.Background(), writeFile(t, "e.yaml", ""), Options{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"scalar document", "42\n", ErrCodeShape},
		{"mapping without records", "people: []\n", ErrCodeShape},
		{"records not a list", "records: 3\n", ErrCodeShape},
		{"non-mapping record", "- 1\n- 2\n", ErrCodeShape},
		{"fractional number", "- {n: 1.5}\n", ErrCodeDecode},
		{"invalid yaml", "records: [\n", ErrCodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeFile(t, "r.yaml", tt.content), Options{})
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Contains(t, le.Path, "r.yaml")
		})
	}
}

func TestLoadCUEErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"no records field", "people: []\n", ErrCodeShape},
		{"records not a list", "records: {a: 1}\n", ErrCodeShape},
		{"incomplete value", "records: [{n: int}]\n", ErrCodeDecode},
		{"float value", "records: [{n: 1.5}]\n", ErrCodeDecode},
		{"conflict", "records: [{n: 1 & 2}]\n", ErrCodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeFile(t, "r.cue", tt.content), Options{})
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), Options{})
	assert.Equal(t, ErrCodeRead, ErrorCode(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "nope.db"), Options{})
	assert.Equal(t, ErrCodeRead, ErrorCode(err))
}

func TestLoadForcedFormat(t *testing.T) {
	path := writeFile(t, "records.txt", "- {n: 1}\n")
	got, err := Load(context.Background(), path, Options{Format: FormatYAML})
	require.NoError(t, err)
	assert.Equal(t, []record.Object{{"n": record.Int(1)}}, got)
}

// createPeopleDB writes a sqlite database holding the people fixture minus tags.
func createPeopleDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE records (name TEXT, age INTEGER, admin BOOLEAN)`)
	require.NoError(t, err)
	for _, row := range []struct {
		name  string
		age   any
		admin bool
	}{
		{"ann", 34, true},
		{"bob", 19, false},
		{"cid", nil, false},
		{"dee", 52, false},
	} {
		_, err = db.Exec(`INSERT INTO records (name, age, admin) VALUES (?, ?, ?)`, row.name, row.age, row.admin)
		require.NoError(t, err)
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := createPeopleDB(t)

	got, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, record.String("ann"), got[0]["name"])
	assert.Equal(t, record.Int(34), got[0]["age"])
	assert.Equal(t, record.Null{}, got[2]["age"])
	assert.Equal(t, record.String("dee"), got[3]["name"])

	t.Run("missing table", func(t *testing.T) {
		_, err := Load(context.Background(), path, Options{Table: "nope"})
		assert.Equal(t, ErrCodeQuery, ErrorCode(err))
	})

	t.Run("real column rejected", func(t *testing.T) {
		db, err := sql.Open("sqlite3", path)
		require.NoError(t, err)
		_, err = db.Exec(`CREATE TABLE prices (amount REAL); INSERT INTO prices VALUES (1.25)`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		_, err = Load(context.Background(), path, Options{Table: "prices"})
		assert.Equal(t, ErrCodeDecode, ErrorCode(err))
		assert.Contains(t, err.Error(), "REAL")
	})
}

// Pushing a predicate down to sqlite must select exactly what the in-memory
// matcher selects over the full table.
func TestSQLitePushdownAgreesWithMatcher(t *testing.T) {
	path := createPeopleDB(t)
	all, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)

	predicates := map[string]queryir.Predicate{
		"eq":           queryir.Equals{Field: "name", Value: record.String("bob")},
		"eq null":      queryir.Equals{Field: "age", Value: record.Null{}},
		"gt":           queryir.Compare{Field: "age", Op: queryir.OpGt, Value: record.Int(20)},
		"ne":           queryir.Compare{Field: "age", Op: queryir.OpNe, Value: record.Int(19)},
		"cmp null":     queryir.Compare{Field: "age", Op: queryir.OpLt, Value: record.Null{}},
		"not lt":       queryir.Not{Predicate: queryir.Compare{Field: "age", Op: queryir.OpLt, Value: record.Int(40)}},
		"len":          queryir.Compare{Field: "name", Op: queryir.OpEq, Value: record.Int(3), OfLength: true},
		"bool":         queryir.Equals{Field: "admin", Value: record.Bool(false)},
		"empty and":    queryir.And{},
		"empty or":     queryir.Or{},
		"or of ands":   queryir.Or{Predicates: []queryir.Predicate{queryir.And{Predicates: []queryir.Predicate{queryir.Equals{Field: "admin", Value: record.Bool(true)}}}, queryir.Compare{Field: "age", Op: queryir.OpGe, Value: record.Int(50)}}},
		"missing eq":   queryir.Equals{Field: "email", Value: record.Null{}},
		"not eq value": queryir.Not{Predicate: queryir.Equals{Field: "name", Value: record.String("ann")}},
		"missing ne":   queryir.Compare{Field: "nmae", Op: queryir.OpNe, Value: record.String("x")},
		"missing or":   queryir.Or{Predicates: []queryir.Predicate{queryir.Equals{Field: "name", Value: record.String("ann")}, queryir.Not{Predicate: queryir.Equals{Field: "email", Value: record.String("x")}}}},
	}

	for name, p := range predicates {
		t.Run(name, func(t *testing.T) {
			pushed, err := Load(context.Background(), path, Options{Where: p})
			if strings.HasPrefix(name, "missing") {
				// the column does not exist in sqlite, so pushdown must fail loudly
				assert.Equal(t, ErrCodeQuery, ErrorCode(err))
				assert.Contains(t, err.Error(), "unknown column")
				assert.Nil(t, pushed)
				return
			}
			require.NoError(t, err)

			match := queryir.MustCompile(p)
			want := []record.Object{}
			for _, r := range all {
				if match(r) {
					want = append(want, r)
				}
			}
			if diff := cmp.Diff(want, pushed); diff != "" {
				t.Errorf("pushdown mismatch for %s (-memory +sql):\n%s", queryir.String(p), diff)
			}
		})
	}
}

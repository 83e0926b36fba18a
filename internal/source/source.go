package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/record"
)

// Format names a record set encoding.
type Format string

const (
	FormatAuto   Format = ""
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatCUE    Format = "cue"
	FormatSQLite Format = "sqlite"
)

// DefaultTable is the sqlite table read when Options.Table is empty.
const DefaultTable = "records"

// Options controls Load.
type Options struct {
	// Format forces a format instead of detecting it from the extension.
	Format Format

	// Table is the sqlite table to read. Defaults to DefaultTable.
	Table string

	// Where keeps only matching records. Nil keeps everything.
	Where queryir.Predicate
}

// ParseFormat validates a user-supplied format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatYAML, FormatJSON, FormatCUE, FormatSQLite:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "db", "sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be yaml, json, cue or sqlite", s)
	}
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", newLoadError(ErrCodeUnknownFormat, path, "cannot detect format from extension", nil)
	}
}

// Load reads the record set at path.
func Load(ctx context.Context, path string, opts Options) ([]record.Object, error) {
	format := opts.Format
	if format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	if format == FormatSQLite {
		table := opts.Table
		if table == "" {
			table = DefaultTable
		}
		return loadSQLite(ctx, path, table, opts.Where)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newLoadError(ErrCodeRead, path, "read file", err)
	}

	var records []record.Object
	switch format {
	case FormatYAML, FormatJSON:
		records, err = decodeYAML(path, data)
	case FormatCUE:
		records, err = decodeCUE(path, data)
	default:
		return nil, newLoadError(ErrCodeUnknownFormat, path, fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err != nil {
		return nil, err
	}

	return filterRecords(path, records, opts.Where)
}

// filterRecords applies where in memory, keeping order.
func filterRecords(path string, records []record.Object, where queryir.Predicate) ([]record.Object, error) {
	if where == nil {
		return records, nil
	}
	match, err := queryir.Compile(where)
	if err != nil {
		return nil, newLoadError(ErrCodeFilter, path, "compile filter", err)
	}
	kept := make([]record.Object, 0, len(records))
	for _, r := range records {
		if match(r) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// objectsFromList converts a decoded list whose elements must be mappings.
func objectsFromList(path string, items []any) ([]record.Object, error) {
	records := make([]record.Object, 0, len(items))
	for i, item := range items {
		v, err := record.FromAny(item)
		if err != nil {
			return nil, newLoadError(ErrCodeDecode, path, fmt.Sprintf("record %d", i), err)
		}
		obj, ok := v.(record.Object)
		if !ok {
			return nil, newLoadError(ErrCodeShape, path, fmt.Sprintf("record %d is %T, want a mapping", i, v), nil)
		}
		records = append(records, obj)
	}
	return records, nil
}

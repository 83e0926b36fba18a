// Package source loads record sets for a viewdb store.
//
// Supported formats:
//   - yaml, json: a top-level list of mappings, or a mapping with a
//     "records" list (decoded with gopkg.in/yaml.v3)
//   - cue: a "records" list field (evaluated with cuelang.org/go)
//   - sqlite: every row of a table, in rowid order, opened read-only
//
// The format is detected from the file extension unless Options.Format is
// set. Options.Where filters the loaded records; for sqlite it is pushed down
// as a WHERE clause compiled by querysql, for the other formats it is
// evaluated in memory with queryir.Compile. Both paths select the same
// records.
package source

// Package querysql compiles queryir predicates to parameterised SQLite.
//
// The compiled WHERE clause selects exactly the rows whose record form the
// in-memory matcher from queryir.Compile selects, under the kind assumptions
// documented in package queryir:
//   - comparisons with a NULL column are never true (SQL three-valued logic)
//   - Equals with a null value compiles to IS NULL
//   - Not compiles to NOT COALESCE(x, 0) so that it inverts "false", not "unknown"
//
// Values are never interpolated: every literal becomes a ? parameter.
// Identifiers are double-quoted with embedded quotes doubled.
package querysql

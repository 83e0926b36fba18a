// Package queryir provides the predicate intermediate representation used to
// select records from a viewdb store.
//
// A Predicate is a small tree of conditions over the fields of a
// record.Object. The same tree has two backends:
//
//	[condition text] → [Predicate] → Compile → store.Predicate[record.Object]
//	                               → querysql.Compile → SQLite WHERE clause
//
// Both backends must agree: a record selected in memory is exactly a row the
// SQL WHERE clause keeps.
//
// SEALED INTERFACE:
//
// Predicate is sealed with a marker method. Only types in this package
// implement it, so backends can switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Compare:
//	case And:
//	case Or:
//	case Not:
//	}
//
// MISSING FIELDS AND NULLS:
//
// A condition on a field the record does not have, or whose value is
// record.Null, is false, including inequality. Equals with a Null value is
// the one exception: it matches null fields. This mirrors SQL, where a
// comparison with NULL is never true, and querysql compiles Not so that it
// inverts "false" rather than "unknown". Agreement between the backends also
// assumes a compared value has the same kind as the column's stored values.
package queryir

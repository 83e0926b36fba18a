// Package record defines the value model for records loaded by viewdb.
//
// Value is a sealed interface: only Null, String, Int, Bool, Array and
// Object implement it. There is no float type. Decoders that produce
// float64 for every number (JSON, YAML) are accepted only when the number
// is integral, which keeps comparisons and canonical output deterministic.
//
// MarshalCanonical renders values as canonical JSON: object keys ordered by
// UTF-16 code units, strings NFC-normalised, no HTML escaping.
package record

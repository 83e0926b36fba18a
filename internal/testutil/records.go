package testutil

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/roach88/viewdb/internal/record"
)

// Object builds a record from alternating field names and Go values.
// Values go through record.FromAny. Panics on malformed input, which is a
// bug in the test itself.
func Object(pairs ...any) record.Object {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("testutil.Object: odd number of arguments (%d)", len(pairs)))
	}
	obj := make(record.Object, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		field, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("testutil.Object: field %d is %T, want string", i/2, pairs[i]))
		}
		v, err := record.FromAny(pairs[i+1])
		if err != nil {
			panic(fmt.Sprintf("testutil.Object: field %q: %v", field, err))
		}
		obj[field] = v
	}
	return obj
}

// People returns a fresh copy of the four-person fixture shared by tests.
func People() []record.Object {
	return []record.Object{
		Object("name", "ann", "age", 34, "admin", true, "team", "ops"),
		Object("name", "bob", "age", 17, "admin", false, "team", "dev"),
		Object("name", "cid", "age", 52, "admin", false, "team", "ops"),
		Object("name", "dee", "age", 29, "admin", true, "team", "dev"),
	}
}

// BufferLogger returns a text logger writing to the returned buffer at
// level and above.
func BufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})), buf
}

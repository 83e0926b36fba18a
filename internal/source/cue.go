package source

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/viewdb/internal/record"
)

// decodeCUE evaluates a CUE file and reads its concrete "records" list.
func decodeCUE(path string, data []byte) ([]record.Object, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, newLoadError(ErrCodeDecode, path, cueerrors.Details(err, nil), nil)
	}

	list := value.LookupPath(cue.ParsePath("records"))
	if !list.Exists() {
		return nil, newLoadError(ErrCodeShape, path, `no "records" field`, nil)
	}
	if err := list.Validate(cue.Concrete(true)); err != nil {
		return nil, newLoadError(ErrCodeDecode, path, cueerrors.Details(err, nil), nil)
	}
	if list.Kind() != cue.ListKind {
		return nil, newLoadError(ErrCodeShape, path, fmt.Sprintf(`"records" is %v, want a list`, list.Kind()), nil)
	}

	iter, err := list.List()
	if err != nil {
		return nil, newLoadError(ErrCodeDecode, path, "iterate records", err)
	}

	var records []record.Object
	for i := 0; iter.Next(); i++ {
		v, err := cueToValue(iter.Value())
		if err != nil {
			return nil, newLoadError(ErrCodeDecode, path, fmt.Sprintf("record %d", i), err)
		}
		obj, ok := v.(record.Object)
		if !ok {
			return nil, newLoadError(ErrCodeShape, path, fmt.Sprintf("record %d is %T, want a struct", i, v), nil)
		}
		records = append(records, obj)
	}
	if records == nil {
		records = []record.Object{}
	}
	return records, nil
}

func cueToValue(v cue.Value) (record.Value, error) {
	if d, ok := v.Default(); ok {
		v = d
	}
	switch v.Kind() {
	case cue.NullKind:
		return record.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return record.Bool(b), err
	case cue.IntKind:
		n, err := v.Int64()
		return record.Int(n), err
	case cue.StringKind:
		s, err := v.String()
		return record.String(s), err
	case cue.BytesKind:
		b, err := v.Bytes()
		return record.String(b), err
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		arr := record.Array{}
		for i := 0; iter.Next(); i++ {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		obj := record.Object{}
		for iter.Next() {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", iter.Label(), err)
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	case cue.FloatKind:
		return nil, fmt.Errorf("floats are not supported: %v", v)
	default:
		return nil, fmt.Errorf("unsupported cue kind %v", v.Kind())
	}
}

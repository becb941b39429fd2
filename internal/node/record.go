package node

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Field names of the on-disk node sub-structure.
const (
	FieldNodes = "nodes"
	FieldName  = "name"
	FieldFlag  = "flag"
)

// Record is the generic field access a document sub-object offers for load/save.
type Record interface {
	Get(field string) (any, bool)
	Put(field string, value any)
}

// BSONRecord is a Record over a bson.M, the shape the repositories read and write.
type BSONRecord bson.M

func (r BSONRecord) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

func (r BSONRecord) Put(field string, value any) {
	r[field] = value
}

// M returns the record as a bson.M without copying.
func (r BSONRecord) M() bson.M {
	return bson.M(r)
}

// asRecord accepts the sub-document shapes produced by the BSON decoder and by
// in-process callers.
func asRecord(v any) (Record, bool) {
	switch t := v.(type) {
	case Record:
		return t, true
	case bson.M:
		return BSONRecord(t), true
	case map[string]any:
		return BSONRecord(t), true
	case bson.D:
		m := make(BSONRecord, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m, true
	}
	return nil, false
}

// asSequence flattens the array shapes a "nodes" field may hold.
func asSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case bson.A:
		return []any(t), true
	case []any:
		return t, true
	case []bson.M:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []Record:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []BSONRecord:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}

// stringField reads a required scalar field in its string form.
func stringField(r Record, field string) (string, error) {
	v, ok := r.Get(field)
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedRecord, field)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case bool, int, int32, int64, float64:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("%w: field %q has unsupported type %T", ErrMalformedRecord, field, v)
}

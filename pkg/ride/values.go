package ride

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ValueKind tags the variant of a Value.
type ValueKind int

const (
	Long ValueKind = iota
	Bool
	Bytes
	String
	Unit
	Tuple
	List
	CaseObject
)

// Value is the evaluator's runtime value representation.
// Like Expr, only the fields relevant to Kind are populated.
type Value struct {
	Kind ValueKind

	LongValue   int64
	BoolValue   bool
	BytesValue  []byte
	StringValue string

	TupleValues []Value
	ListValues  []Value

	CaseType   string
	CaseFields map[string]Value
}

func NewLong(v int64) Value   { return Value{Kind: Long, LongValue: v} }
func NewBool(v bool) Value    { return Value{Kind: Bool, BoolValue: v} }
func NewUnit() Value          { return Value{Kind: Unit} }
func NewTuple(vs ...Value) Value {
	return Value{Kind: Tuple, TupleValues: vs}
}
func NewList(vs []Value) Value { return Value{Kind: List, ListValues: vs} }
func NewCaseObject(typ string, fields map[string]Value) Value {
	return Value{Kind: CaseObject, CaseType: typ, CaseFields: fields}
}

// NewBytes builds a Bytes value, enforcing the protocol-version-gated
// size cap on construction; a violation is a LimitExceeded execution
// error.
func NewBytes(b []byte, maxBytes int) (Value, error) {
	if len(b) > maxBytes {
		return Value{}, NewLimitExceeded(fmt.Sprintf("byte string length %d exceeds limit %d", len(b), maxBytes))
	}
	return Value{Kind: Bytes, BytesValue: b}, nil
}

// NewString builds a String value under the same size-cap rule as
// NewBytes, measured in UTF-8 bytes.
func NewString(s string, maxBytes int) (Value, error) {
	if len(s) > maxBytes {
		return Value{}, NewLimitExceeded(fmt.Sprintf("string length %d exceeds limit %d", len(s), maxBytes))
	}
	return Value{Kind: String, StringValue: s}, nil
}

// NewListChecked builds a List value, enforcing a maximum element
// count.
func NewListChecked(vs []Value, maxElements int) (Value, error) {
	if len(vs) > maxElements {
		return Value{}, NewLimitExceeded(fmt.Sprintf("list length %d exceeds limit %d", len(vs), maxElements))
	}
	return NewList(vs), nil
}

// Render produces the deterministic, canonical pretty-print of v used
// both in log rendering and in validation-error messages.
func (v Value) Render() string {
	switch v.Kind {
	case Long:
		return fmt.Sprintf("%d", v.LongValue)
	case Bool:
		return fmt.Sprintf("%t", v.BoolValue)
	case Bytes:
		return "base58'" + base58Render(v.BytesValue) + "'"
	case String:
		return "\"" + v.StringValue + "\""
	case Unit:
		return "Unit"
	case Tuple:
		parts := make([]string, len(v.TupleValues))
		for i, e := range v.TupleValues {
			parts[i] = e.Render()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case List:
		parts := make([]string, len(v.ListValues))
		for i, e := range v.ListValues {
			parts[i] = e.Render()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case CaseObject:
		names := make([]string, 0, len(v.CaseFields))
		for k := range v.CaseFields {
			names = append(names, k)
		}
		// Sorted for determinism; a caller that needs a declared field
		// order (pseudo-tx records) renders via RenderRecord instead.
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, n := range names {
			parts = append(parts, fmt.Sprintf("%s = %s", n, v.CaseFields[n].Render()))
		}
		return fmt.Sprintf("%s(%s)", v.CaseType, strings.Join(parts, ", "))
	default:
		return "<unknown>"
	}
}

// RenderRecord renders a CaseObject with fields in the explicit order
// given; records like TransferTransaction(...) must render their
// fields in declared order, not sorted.
func (v Value) RenderRecord(fieldOrder []string) (string, error) {
	if v.Kind != CaseObject {
		return "", errors.New("RenderRecord called on a non-CaseObject value")
	}
	parts := make([]string, 0, len(fieldOrder))
	for _, name := range fieldOrder {
		fv, ok := v.CaseFields[name]
		if !ok {
			return "", errors.Errorf("case object %q missing field %q", v.CaseType, name)
		}
		parts = append(parts, fmt.Sprintf("%s = %s", name, fv.Render()))
	}
	return fmt.Sprintf("%s(%s)", v.CaseType, strings.Join(parts, ", ")), nil
}

func base58Render(b []byte) string {
	return Base58EncodeForRender(b)
}

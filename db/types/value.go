// Package types defines NanoDB's value model: a nullable tagged scalar over
// the recognised SQL types. SQL NULL is a distinct value, not merely
// "absent" — Null(t) produces a real value that carries its type.
package types

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// DataType enumerates the SQL types NanoDB recognises.
type DataType int

const (
	TINYINT DataType = iota
	SMALLINT
	INTEGER
	BIGINT
	FLOAT
	DOUBLE
	NUMERIC
	CHAR
	VARCHAR
	TEXT
	DATE
	TIME
	DATETIME
	TIMESTAMP
	// FILEPOINTER is internal: a reference into a storage page, never
	// produced by a literal or visible at the SQL surface.
	FILEPOINTER
)

func (t DataType) String() string {
	switch t {
	case TINYINT:
		return "TINYINT"
	case SMALLINT:
		return "SMALLINT"
	case INTEGER:
		return "INTEGER"
	case BIGINT:
		return "BIGINT"
	case FLOAT:
		return "FLOAT"
	case DOUBLE:
		return "DOUBLE"
	case NUMERIC:
		return "NUMERIC"
	case CHAR:
		return "CHAR"
	case VARCHAR:
		return "VARCHAR"
	case TEXT:
		return "TEXT"
	case DATE:
		return "DATE"
	case TIME:
		return "TIME"
	case DATETIME:
		return "DATETIME"
	case TIMESTAMP:
		return "TIMESTAMP"
	case FILEPOINTER:
		return "FILE_POINTER"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// IsInteger reports whether t is one of the integral types.
func (t DataType) IsInteger() bool {
	switch t {
	case TINYINT, SMALLINT, INTEGER, BIGINT:
		return true
	}
	return false
}

// IsNumeric reports whether t is any integral, floating, or NUMERIC type.
func (t DataType) IsNumeric() bool {
	return t.IsInteger() || t == FLOAT || t == DOUBLE || t == NUMERIC
}

// IsString reports whether t is a character type.
func (t DataType) IsString() bool {
	switch t {
	case CHAR, VARCHAR, TEXT:
		return true
	}
	return false
}

// IsTemporal reports whether t is a date/time type.
func (t DataType) IsTemporal() bool {
	switch t {
	case DATE, TIME, DATETIME, TIMESTAMP:
		return true
	}
	return false
}

// Value is a nullable tagged scalar. The zero Value is a non-NULL TINYINT
// 0; use the
// constructors below to build a well-formed value.
type Value struct {
	typ     DataType
	isNull  bool
	i       int64
	f       float64
	dec     *big.Rat
	s       string
	t       time.Time
	filePtr FilePointer
}

// FilePointer is an opaque internal reference into a storage page, used only
// by page-backed tuples; core expression code never constructs one directly.
type FilePointer struct {
	PageID int64
	Slot    int
}

// Null returns a NULL value of the given type.
func Null(t DataType) Value { return Value{typ: t, isNull: true} }

func NewInt(t DataType, v int64) Value    { return Value{typ: t, i: v} }
func NewFloat(t DataType, v float64) Value { return Value{typ: t, f: v} }
func NewNumeric(v *big.Rat) Value          { return Value{typ: NUMERIC, dec: v} }
func NewString(t DataType, v string) Value { return Value{typ: t, s: v} }
func NewTime(t DataType, v time.Time) Value { return Value{typ: t, t: v} }
func NewFilePointer(v FilePointer) Value   { return Value{typ: FILEPOINTER, filePtr: v} }

// Type returns the value's declared SQL type.
func (v Value) Type() DataType { return v.typ }

// IsNull reports whether this is SQL NULL.
func (v Value) IsNull() bool { return v.isNull }

func (v Value) Int() int64       { return v.i }
func (v Value) Float() float64   { return v.f }
func (v Value) Numeric() *big.Rat { return v.dec }
func (v Value) Str() string      { return v.s }
func (v Value) Time() time.Time  { return v.t }
func (v Value) FilePointer() FilePointer { return v.filePtr }

// AsFloat64 widens any numeric value to float64 for comparison/arithmetic
// against another numeric value of a different width.
func (v Value) AsFloat64() float64 {
	switch {
	case v.typ.IsInteger():
		return float64(v.i)
	case v.typ == FLOAT || v.typ == DOUBLE:
		return v.f
	case v.typ == NUMERIC && v.dec != nil:
		f, _ := v.dec.Float64()
		return f
	}
	return 0
}

func (v Value) String() string {
	if v.isNull {
		return "NULL"
	}
	switch {
	case v.typ.IsInteger():
		return strconv.FormatInt(v.i, 10)
	case v.typ == FLOAT || v.typ == DOUBLE:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case v.typ == NUMERIC:
		if v.dec == nil {
			return "0"
		}
		return v.dec.RatString()
	case v.typ.IsString():
		return v.s
	case v.typ.IsTemporal():
		return v.t.Format(time.RFC3339)
	case v.typ == FILEPOINTER:
		return fmt.Sprintf("<page=%d,slot=%d>", v.filePtr.PageID, v.filePtr.Slot)
	}
	return ""
}

// CompareResult is the outcome of a three-valued comparison: a value
// comparison always either orders two non-NULL operands or reports Unknown
// if either side is NULL.
type CompareResult int

const (
	Less CompareResult = iota - 1
	Equal
	Greater
	Unknown
)

// Compare implements ordering for same-family types (numeric vs numeric,
// string vs string, temporal vs temporal). Returns Unknown, not an error,
// whenever either operand is NULL — three-valued logic is baked in at this
// layer so every caller (comparison expressions, sort keys, index lookups)
// gets it uniformly.
func (v Value) Compare(other Value) (CompareResult, error) {
	if v.isNull || other.isNull {
		return Unknown, nil
	}
	switch {
	case v.typ.IsNumeric() && other.typ.IsNumeric():
		return compareFloat(v.AsFloat64(), other.AsFloat64()), nil
	case v.typ.IsString() && other.typ.IsString():
		return compareString(v.s, other.s), nil
	case v.typ.IsTemporal() && other.typ.IsTemporal():
		if v.t.Before(other.t) {
			return Less, nil
		}
		if v.t.After(other.t) {
			return Greater, nil
		}
		return Equal, nil
	default:
		return Unknown, fmt.Errorf("types: cannot compare %s with %s", v.typ, other.typ)
	}
}

func compareFloat(a, b float64) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareString(a, b string) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// Equal reports plain equality, treating NULL as never equal to anything
// (including another NULL) — callers that need SQL "IS NULL" semantics
// should check IsNull() directly rather than Equal.
func (v Value) Equal(other Value) bool {
	cmp, err := v.Compare(other)
	return err == nil && cmp == Equal
}

// valueWire is Value's on-the-wire shape: gob only sees exported fields, so
// GobEncode/GobDecode marshal through this instead of Value's own layout.
type valueWire struct {
	Typ     DataType
	IsNull  bool
	I       int64
	F       float64
	Dec     *big.Rat
	S       string
	T       time.Time
	FilePtr FilePointer
}

// GobEncode lets a Value round-trip through encoding/gob, which db/storage
// uses to persist row values in badger.
func (v Value) GobEncode() ([]byte, error) {
	w := valueWire{Typ: v.typ, IsNull: v.isNull, I: v.i, F: v.f, Dec: v.dec, S: v.s, T: v.t, FilePtr: v.filePtr}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode is GobEncode's inverse.
func (v *Value) GobDecode(data []byte) error {
	var w valueWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	*v = Value{typ: w.Typ, isNull: w.IsNull, i: w.I, f: w.F, dec: w.Dec, s: w.S, t: w.T, filePtr: w.FilePtr}
	return nil
}

// ParseLiteral parses a textual SQL literal of the given type. Neither the
// parser nor db/storage calls it: the parser builds literal values itself,
// and stored rows are decoded through GobDecode.
func ParseLiteral(t DataType, text string) (Value, error) {
	switch {
	case t.IsInteger():
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("types: invalid %s literal %q: %w", t, text, err)
		}
		return NewInt(t, n), nil
	case t == FLOAT || t == DOUBLE:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("types: invalid %s literal %q: %w", t, text, err)
		}
		return NewFloat(t, f), nil
	case t == NUMERIC:
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			return Value{}, fmt.Errorf("types: invalid NUMERIC literal %q", text)
		}
		return NewNumeric(r), nil
	case t.IsString():
		return NewString(t, text), nil
	case t.IsTemporal():
		layout := temporalLayout(t)
		tm, err := time.Parse(layout, strings.TrimSpace(text))
		if err != nil {
			return Value{}, fmt.Errorf("types: invalid %s literal %q: %w", t, text, err)
		}
		return NewTime(t, tm), nil
	}
	return Value{}, fmt.Errorf("types: unsupported literal type %s", t)
}

func temporalLayout(t DataType) string {
	switch t {
	case DATE:
		return "2006-01-02"
	case TIME:
		return "15:04:05"
	default:
		return "2006-01-02 15:04:05"
	}
}

package report

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindInt
	kindString
	kindDecimal
)

// Value is one cell of a result table. The zero Value is NULL.
type Value struct {
	dec  decimal.Decimal
	str  string
	num  int
	kind valueKind
}

// Null is the undefined cell, used e.g. for rates over an empty group.
var Null = Value{}

// Int returns an integer cell.
func Int(v int) Value { return Value{kind: kindInt, num: v} }

// String returns a text cell.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Decimal returns an exact decimal cell.
func Decimal(d decimal.Decimal) Value { return Value{kind: kindDecimal, dec: d} }

// IsNull reports whether v is undefined.
func (v Value) IsNull() bool { return v.kind == kindNull }

// AsInt returns the integer and whether v holds one.
func (v Value) AsInt() (int, bool) { return v.num, v.kind == kindInt }

// AsDecimal returns the decimal and whether v holds one.
func (v Value) AsDecimal() (decimal.Decimal, bool) { return v.dec, v.kind == kindDecimal }

// Text renders v, using null for undefined cells.
func (v Value) Text(null string) string {
	switch v.kind {
	case kindInt:
		return strconv.Itoa(v.num)
	case kindString:
		return v.str
	case kindDecimal:
		return v.dec.String()
	default:
		return null
	}
}

// String renders v with NULL for undefined cells.
func (v Value) String() string {
	return v.Text("NULL")
}

// MarshalJSON renders numbers as JSON numbers and undefined cells as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindInt:
		return []byte(strconv.Itoa(v.num)), nil
	case kindString:
		return json.Marshal(v.str)
	case kindDecimal:
		return []byte(v.dec.String()), nil
	default:
		return []byte("null"), nil
	}
}

// Numeric reports whether v should be right-aligned when rendered.
func (v Value) Numeric() bool {
	return v.kind == kindInt || v.kind == kindDecimal
}

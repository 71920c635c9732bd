// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"bytes"
	"fmt"
)

// ValueKind tags the scalar variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindInteger
	KindReal
	KindBlob
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is the tagged-union scalar exchanged with the store. The zero
// value is Null. Construct non-null values with Text, Int, Real and Blob.
type Value struct {
	kind ValueKind
	text string
	num  int64
	real float64
	blob []byte
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text wraps a string scalar.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Int wraps an integer scalar.
func Int(i int64) Value { return Value{kind: KindInteger, num: i} }

// Real wraps a floating point scalar.
func Real(f float64) Value { return Value{kind: KindReal, real: f} }

// Blob wraps a byte slice scalar. The slice is copied so later mutation
// of the argument does not leak into the store.
func Blob(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBlob, blob: cp}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// TextValue returns the held string. It is only meaningful for KindText.
func (v Value) TextValue() string { return v.text }

// IntValue returns the held integer. It is only meaningful for KindInteger.
func (v Value) IntValue() int64 { return v.num }

// RealValue returns the held float. It is only meaningful for KindReal.
func (v Value) RealValue() float64 { return v.real }

// BlobValue returns a copy of the held bytes. It is only meaningful for KindBlob.
func (v Value) BlobValue() []byte {
	cp := make([]byte, len(v.blob))
	copy(cp, v.blob)
	return cp
}

// Equal reports whether two values hold the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == other.text
	case KindInteger:
		return v.num == other.num
	case KindReal:
		return v.real == other.real
	case KindBlob:
		return bytes.Equal(v.blob, other.blob)
	default:
		return false
	}
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindText:
		return fmt.Sprintf("%q", v.text)
	case KindInteger:
		return fmt.Sprintf("%d", v.num)
	case KindReal:
		return fmt.Sprintf("%g", v.real)
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.blob))
	default:
		return "invalid"
	}
}

// driverValue converts the value into the representation handed to the
// SQL driver.
func (v Value) driverValue() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.num
	case KindReal:
		return v.real
	case KindBlob:
		return v.blob
	default:
		return nil
	}
}

// compare orders v against other for the relational filter operators.
// It returns <0, 0 or >0, and false when the two values are not
// comparable (different kinds, or either side null). Integer and real
// values compare numerically against each other, matching SQLite.
func (v Value) compare(other Value) (int, bool) {
	if v.IsNull() || other.IsNull() {
		return 0, false
	}
	switch {
	case v.kind == KindText && other.kind == KindText:
		switch {
		case v.text < other.text:
			return -1, true
		case v.text > other.text:
			return 1, true
		}
		return 0, true
	case v.kind == KindBlob && other.kind == KindBlob:
		return bytes.Compare(v.blob, other.blob), true
	case (v.kind == KindInteger || v.kind == KindReal) && (other.kind == KindInteger || other.kind == KindReal):
		a, b := v.asReal(), other.asReal()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (v Value) asReal() float64 {
	if v.kind == KindInteger {
		return float64(v.num)
	}
	return v.real
}

// valueFromDriver normalizes a scanned driver scalar into a Value of the
// declared column type. SQLite's dynamic typing means a column can hand
// back any storage class; the declared type wins where a lossless
// conversion exists.
func valueFromDriver(raw any, typ ColumnType) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	switch x := raw.(type) {
	case string:
		if typ == TypeBlob {
			return Blob([]byte(x)), nil
		}
		return Text(x), nil
	case []byte:
		if typ == TypeText {
			return Text(string(x)), nil
		}
		return Blob(x), nil
	case int64:
		if typ == TypeReal {
			return Real(float64(x)), nil
		}
		return Int(x), nil
	case int:
		if typ == TypeReal {
			return Real(float64(x)), nil
		}
		return Int(int64(x)), nil
	case float64:
		if typ == TypeInteger && x == float64(int64(x)) {
			return Int(int64(x)), nil
		}
		return Real(x), nil
	case bool:
		if x {
			return Int(1), nil
		}
		return Int(0), nil
	default:
		return Null(), fmt.Errorf("column type %s: unsupported driver value %T", typ, raw)
	}
}

// matchesType reports whether the value may be stored in a column of the
// given declared type. Null is storable everywhere; any other kind must
// match the declared type exactly so that a stored record decodes back
// to the record that was inserted.
func (v Value) matchesType(typ ColumnType) bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return typ == TypeText
	case KindInteger:
		return typ == TypeInteger
	case KindReal:
		return typ == TypeReal
	case KindBlob:
		return typ == TypeBlob
	default:
		return false
	}
}

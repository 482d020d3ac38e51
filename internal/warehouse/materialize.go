/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package warehouse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of materialized value variants.
type Kind uint8

// Value variants.
const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindText
)

// Value is a coerced wire value: exactly one of number, bool, text, or null.
type Value struct {
	kind    Kind
	num     float64
	boolean bool
	text    string
}

// NullValue returns the null Value. The zero Value is also null.
func NullValue() Value { return Value{} }

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }

// TextValue returns a text Value.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Number returns the numeric value, or 0 for other variants.
func (v Value) Number() float64 { return v.num }

// Bool returns the boolean value, or false for other variants.
func (v Value) Bool() bool { return v.boolean }

// Text returns the text value, or "" for other variants.
func (v Value) Text() string { return v.text }

// MarshalJSON renders the value as a JSON number, bool, string, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.boolean)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// String renders the value for logs and test output.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindText:
		return v.text
	default:
		return "null"
	}
}

// Row maps column names to coerced values. Column order lives in the schema.
type Row map[string]Value

// Materialize converts raw wire rows into typed rows using the column schema
// returned by the warehouse. Pure function: no I/O, no mutation of inputs.
//
// Coercion by declared wire type (case-insensitive):
//   - "fixed": parsed as a number; a malformed value fails the whole call
//     with ErrTypeCoercion rather than substituting zero.
//   - "boolean": "true" (any case) is true, any other value is false.
//   - anything else: passed through as text.
//
// A null wire value is null regardless of declared type. Output row count
// always equals input row count on success; no partial rows are returned.
func Materialize(columns []Column, raw [][]*string) ([]Row, error) {
	rows := make([]Row, 0, len(raw))
	for i, rawRow := range raw {
		if len(rawRow) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, schema has %d columns",
				ErrTypeCoercion, i, len(rawRow), len(columns))
		}

		row := make(Row, len(columns))
		for j, col := range columns {
			val, err := coerce(col, rawRow[j])
			if err != nil {
				return nil, fmt.Errorf("%w: column %q row %d: %v", ErrTypeCoercion, col.Name, i, err)
			}
			row[col.Name] = val
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// coerce converts one wire value according to the column's declared type.
func coerce(col Column, wire *string) (Value, error) {
	if wire == nil {
		return NullValue(), nil
	}

	switch strings.ToLower(col.Type) {
	case "fixed":
		f, err := strconv.ParseFloat(*wire, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a number", *wire)
		}
		return NumberValue(f), nil
	case "boolean":
		return BoolValue(strings.EqualFold(*wire, "true")), nil
	default:
		return TextValue(*wire), nil
	}
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Number is a numeric reservation cell. An admin edit may leave text in a
// numeric column, so a Number holds either a float or the raw text.
type Number struct {
	Num    float64
	Raw    string
	IsText bool
}

func Float(v float64) Number {
	return Number{Num: v}
}

func Text(s string) Number {
	return Number{Raw: s, IsText: true}
}

// Float64 returns the numeric value, or 0 for a text cell.
func (n Number) Float64() float64 {
	if n.IsText {
		return 0
	}
	return n.Num
}

func (n Number) String() string {
	if n.IsText {
		return n.Raw
	}
	return strconv.FormatFloat(n.Num, 'f', -1, 64)
}

// Fixed formats a numeric cell with two decimals. Text cells are returned as is.
func (n Number) Fixed() string {
	if n.IsText {
		return n.Raw
	}
	return strconv.FormatFloat(n.Num, 'f', 2, 64)
}

// Cell returns the value to write into a spreadsheet cell.
func (n Number) Cell() any {
	if n.IsText {
		return n.Raw
	}
	return n.Num
}

// GormDataType declares the column as BLOB, which in sqlite means no type
// affinity: floats are stored as REAL and text as TEXT, verbatim. A REAL
// column would turn text such as "1e999" into +Inf.
func (Number) GormDataType() string {
	return "blob"
}

func (n Number) Value() (driver.Value, error) {
	if n.IsText {
		return n.Raw, nil
	}
	return n.Num, nil
}

// Scan reads back the storage class the value was written with.
func (n *Number) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = Number{}
	case float64:
		*n = Float(v)
	case int64:
		*n = Float(float64(v))
	case string:
		*n = Text(v)
	case []byte:
		*n = Text(string(v))
	default:
		return errors.Newf("unsupported number cell type %T", src)
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.IsText {
		return json.Marshal(n.Raw)
	}
	return json.Marshal(n.Num)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Float(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "number cell must be a JSON number or string")
	}
	*n = Text(s)
	return nil
}

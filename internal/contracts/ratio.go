package contracts

import (
	"encoding/json"
	"math"
	"strconv"
)

// Ratio is a quotient that is undefined when its denominator sums to zero
type Ratio struct {
	Value   float64
	Defined bool
}

// UndefinedRatio is the explicit marker for a zero denominator
var UndefinedRatio = Ratio{}

// NewRatio divides num by den, returning UndefinedRatio when den is zero
func NewRatio(num, den float64) Ratio {
	if den == 0 {
		return UndefinedRatio
	}
	return Ratio{Value: num / den, Defined: true}
}

// Rounded returns the ratio rounded to the given number of decimal digits
func (r Ratio) Rounded(digits int) Ratio {
	if !r.Defined {
		return r
	}
	pow := math.Pow(10, float64(digits))
	return Ratio{Value: math.Round(r.Value*pow) / pow, Defined: true}
}

// Float returns the value and whether it is defined
func (r Ratio) Float() (float64, bool) {
	return r.Value, r.Defined
}

func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalJSON encodes an undefined ratio as null
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON decodes null as UndefinedRatio
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = UndefinedRatio
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ratio{Value: v, Defined: true}
	return nil
}

// CategoryRatio is one row of a by-category loss ratio table
type CategoryRatio struct {
	Category  string  `json:"category"`
	Claims    float64 `json:"claims"`
	Premium   float64 `json:"premium"`
	LossRatio Ratio   `json:"loss_ratio"`
}

// CategoryTable is a ranked by-category loss ratio table
type CategoryTable struct {
	Category string          `json:"category"` // 그룹핑 컬럼 이름
	Rows     []CategoryRatio `json:"rows"`
}

// LossRatioSummary bundles the overall ratio with per-category tables
type LossRatioSummary struct {
	Overall Ratio           `json:"overall"`
	Tables  []CategoryTable `json:"tables"`
}

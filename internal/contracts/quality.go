package contracts

// MissingValue is the share of null values in one column
type MissingValue struct {
	Column  string  `json:"column"`
	Percent float64 `json:"percent"` // 0 ~ 100
}

// ColumnSummary describes the distribution of a numeric column
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

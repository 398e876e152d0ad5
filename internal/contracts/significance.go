package contracts

// ChiSquaredResult is the outcome of a chi-squared independence test
type ChiSquaredResult struct {
	GroupColumn      string            `json:"group_col"`
	OutcomeColumn    string            `json:"outcome_col"`
	Chi2             float64           `json:"chi2"`
	PValue           float64           `json:"p_value"`
	DOF              int               `json:"dof"`
	ContingencyTable *ContingencyTable `json:"contingency_table"`
	Expected         [][]float64       `json:"expected,omitempty"`
}

// Significant reports whether the p-value is below alpha
func (r *ChiSquaredResult) Significant(alpha float64) bool {
	return r.DOF > 0 && r.PValue < alpha
}

// ContingencyTable is a crosstab of group values (rows) against outcome values (columns)
type ContingencyTable struct {
	Rows    []string  `json:"rows"`
	Columns []string  `json:"columns"`
	Counts  [][]int64 `json:"counts"`
}

// Total returns the number of observations in the table
func (t *ContingencyTable) Total() int64 {
	var n int64
	for _, row := range t.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// ANOVAResult is the outcome of a one-way ANOVA
// FStatistic and PValue are nil when the test could not run
type ANOVAResult struct {
	GroupColumn string   `json:"group_col"`
	ValueColumn string   `json:"value_col"`
	FStatistic  *float64 `json:"f_statistic"`
	PValue      *float64 `json:"p_value"`
	GroupCount  int      `json:"group_count"`
	Note        string   `json:"note,omitempty"`
}

// Ran reports whether the test produced statistics
func (r *ANOVAResult) Ran() bool {
	return r.FStatistic != nil && r.PValue != nil
}

// Significant reports whether the p-value is below alpha
func (r *ANOVAResult) Significant(alpha float64) bool {
	return r.Ran() && *r.PValue < alpha
}

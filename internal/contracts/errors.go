package contracts

import "errors"

var (
	// ErrColumnNotFound is returned when a referenced column is absent from the dataset
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnNotNumeric is returned when a column used as a sum is not numeric
	ErrColumnNotNumeric = errors.New("column is not numeric")

	// ErrZeroExpected is returned by the chi-squared test when an expected frequency is zero
	ErrZeroExpected = errors.New("contingency table has a zero expected frequency")

	// ErrEmptyDataset is returned when a dataset source yields no header
	ErrEmptyDataset = errors.New("dataset is empty")
)

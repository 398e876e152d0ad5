// Package excess parses the free-text excess (deductible) selection into an amount.
package excess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wonny/claimlens/internal/dataset"
)

const noExcess = "No excess"

// "R 5 000", "Mobility - Windscreen R2 500" 등
var amountPattern = regexp.MustCompile(`R\s?(\d[\d\s]*)`)

// Parse extracts the excess amount from text.
// "No excess" yields 0. An amount such as "R 5 000" yields 5000.
// Anything else is reported as absent.
func Parse(text string) (int, bool) {
	if strings.Contains(text, noExcess) {
		return 0, true
	}
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m[1])
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Derive adds target as a numeric column of amounts parsed from source
// Null or unparseable source cells become null.
func Derive(ds *dataset.Dataset, source, target string) error {
	texts, valid, err := ds.Keys(source)
	if err != nil {
		return fmt.Errorf("derive %s: %w", target, err)
	}

	values := make([]float64, len(texts))
	parsed := make([]bool, len(texts))
	for i, s := range texts {
		if !valid[i] {
			continue
		}
		if n, ok := Parse(s); ok {
			values[i] = float64(n)
			parsed[i] = true
		}
	}
	return ds.AddFloatColumn(target, values, parsed)
}

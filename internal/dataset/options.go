package dataset

import (
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultNullValues are the cell values read as null
var DefaultNullValues = []string{"", "NA", "NaN", "nan", "null", "NULL", "<nil>"}

// Options controls how raw records become a dataset
type Options struct {
	Delimiter     rune     // 0 = 확장자로 결정 (.txt → '|', 그 외 ',')
	Sheet         string   // xlsx 시트 이름 (빈 값 = 첫 시트)
	StringColumns []string // 타입 감지 없이 문자열로 유지할 컬럼 (카테고리 키)
	NullValues    []string
}

func (o Options) nullValues() []string {
	if len(o.NullValues) > 0 {
		return o.NullValues
	}
	return DefaultNullValues
}

// delimiterFor picks the field delimiter for a file path
func (o Options) delimiterFor(path string) rune {
	if o.Delimiter != 0 {
		return o.Delimiter
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return '|'
	}
	return ','
}

func (o Options) loadOptions() []dataframe.LoadOption {
	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(o.nullValues()),
	}
	if len(o.StringColumns) > 0 {
		types := make(map[string]series.Type, len(o.StringColumns))
		for _, c := range o.StringColumns {
			types[c] = series.String
		}
		opts = append(opts, dataframe.WithTypes(types))
	}
	return opts
}

package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/claimlens/internal/contracts"
)

// Load reads a dataset from a delimited text file or an xlsx workbook
func Load(path string, opts Options) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadXLSX(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	opts.Delimiter = opts.delimiterFor(path)
	ds, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// Read parses delimited text with a header row.
// A header without data rows gives an empty dataset.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	// dataframe.ReadCSV와 같은 csv 설정, 타입 감지는 FromRecords(LoadRecords)에서
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	return FromRecords(records, opts)
}

func loadXLSX(path string, opts Options) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, path, opts)
}

func readWorkbook(f *excelize.File, path string, opts Options) (*Dataset, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s: %w", path, contracts.ErrEmptyDataset)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	// excelize는 행 끝의 빈 셀을 잘라내므로 FromRecords에서 헤더 폭으로 맞춤
	return FromRecords(rows, opts)
}

// Source yields a dataset on demand
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
	Describe() string
}

// FileSource loads a dataset from a local file
type FileSource struct {
	Path    string
	Options Options
}

// NewFileSource creates a file-backed source
func NewFileSource(path string, opts Options) *FileSource {
	return &FileSource{Path: path, Options: opts}
}

// Load reads the file
func (s *FileSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.Path, s.Options)
}

// Describe returns the file path
func (s *FileSource) Describe() string {
	return "file:" + s.Path
}

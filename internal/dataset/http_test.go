package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// plainGetter adapts http.DefaultClient to Getter
type plainGetter struct{}

func (plainGetter) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp, nil
}

func TestHTTPSource_PipeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/claims.txt", r.URL.Path)
		_, _ = w.Write([]byte("Gender|TotalClaims\nMale|10\nFemale|0\n"))
	}))
	defer server.Close()

	src := NewHTTPSource(plainGetter{}, server.URL+"/data/claims.txt?token=secret", Options{})
	ds, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Gender", "TotalClaims"}, ds.Names())
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, server.URL+"/data/claims.txt", src.Describe())
}

func TestHTTPSource_Workbook(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"Province", "TotalClaims", "TotalPremium"},
		{"Gauteng", 100, 200},
		{"Limpopo", 0, 100},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	ds, err := NewHTTPSource(plainGetter{}, server.URL+"/claims.xlsx", Options{}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	claims, _, err := ds.Floats("TotalClaims")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 0}, claims)
}

func TestHTTPSource_DownloadError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewHTTPSource(plainGetter{}, server.URL+"/missing.csv", Options{}).Load(context.Background())
	assert.ErrorContains(t, err, "download dataset")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/claims.txt"))
	assert.True(t, IsURL("http://localhost:9000/claims.csv"))
	assert.False(t, IsURL("data/claims.txt"))
	assert.False(t, IsURL("/tmp/http-claims.csv"))
}

package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Getter performs HTTP GET requests; non-2xx responses must be returned as errors
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// HTTPSource downloads a dataset file over HTTP(S).
// The format is chosen from the URL path extension like a local file.
type HTTPSource struct {
	URL     string
	Options Options
	client  Getter
}

// NewHTTPSource creates a source that downloads rawURL with client
func NewHTTPSource(client Getter, rawURL string, opts Options) *HTTPSource {
	return &HTTPSource{URL: rawURL, Options: opts, client: client}
}

// IsURL reports whether a dataset path is an http(s) URL
func IsURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// Load downloads and parses the dataset
func (s *HTTPSource) Load(ctx context.Context) (*Dataset, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("parse dataset url: %w", err)
	}
	name := path.Base(u.Path)

	resp, err := s.client.Get(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	opts := s.Options
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		f, err := excelize.OpenReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return readWorkbook(f, name, opts)
	}

	opts.Delimiter = opts.delimiterFor(name)
	ds, err := Read(resp.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.URL, err)
	}
	return ds, nil
}

// Describe returns the dataset URL without its query string
func (s *HTTPSource) Describe() string {
	if u, err := url.Parse(s.URL); err == nil {
		u.RawQuery = ""
		u.User = nil
		return u.String()
	}
	return s.URL
}

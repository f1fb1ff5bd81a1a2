// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ossindex is a client for the Sonatype OSS Index component report API.
// https://ossindex.sonatype.org/rest
package ossindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/depscan/depscan/log"
	"github.com/depscan/depscan/version"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBaseURL is the public OSS Index instance.
	DefaultBaseURL = "https://ossindex.sonatype.org"
	// MaxCoordinatesPerRequest is the largest batch the API accepts.
	MaxCoordinatesPerRequest = 128

	componentReportPath = "/api/v3/component-report"
	requestContentType  = "application/vnd.ossindex.component-report-request.v1+json"

	defaultMaxConcurrentRequests = 4
	defaultMaxRetries            = 3
	defaultRetryInterval         = time.Second
)

// ErrTooManyRequests is returned when the API keeps rate limiting the client
// after all retries. Authenticated clients get higher limits.
var ErrTooManyRequests = errors.New("ossindex: too many requests")

// APIError is a non-successful response of the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ossindex: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("ossindex: HTTP %d: %s", e.StatusCode, e.Message)
}

// ComponentReport lists the known vulnerabilities of one component.
type ComponentReport struct {
	// The package URL the report is about, without qualifiers.
	Coordinates     string          `json:"coordinates"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Vulnerability is a single vulnerability of a component report.
type Vulnerability struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"displayName,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	CVSSScore     float64  `json:"cvssScore"`
	CVSSVector    string   `json:"cvssVector,omitempty"`
	CWE           string   `json:"cwe,omitempty"`
	CVE           string   `json:"cve,omitempty"`
	Reference     string   `json:"reference,omitempty"`
	VersionRanges []string `json:"versionRanges,omitempty"`
}

type componentReportRequest struct {
	Coordinates []string `json:"coordinates"`
}

// Config configures a Client. Only fields that are set override the defaults.
type Config struct {
	// BaseURL of the API, DefaultBaseURL if empty.
	BaseURL string
	// Username and Token enable authenticated requests.
	Username string
	Token    string
	// Cache is consulted before the network if set.
	Cache      Cache
	HTTPClient *http.Client
	// MaxConcurrentRequests bounds the batches in flight.
	MaxConcurrentRequests int
	// MaxRetries for rate limited and failing requests.
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Client queries OSS Index.
type Client struct {
	baseURL       string
	username      string
	token         string
	cache         Cache
	httpClient    *http.Client
	maxConcurrent int
	maxRetries    uint64
	retryInterval time.Duration
}

// New returns a client for cfg.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		username:      cfg.Username,
		token:         cfg.Token,
		cache:         cfg.Cache,
		httpClient:    cfg.HTTPClient,
		maxConcurrent: cfg.MaxConcurrentRequests,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.maxConcurrent <= 0 {
		c.maxConcurrent = defaultMaxConcurrentRequests
	}
	if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryInterval <= 0 {
		c.retryInterval = defaultRetryInterval
	}
	return c
}

// ComponentReports returns the reports for the given package URLs, in request
// order. Coordinates the API knows nothing about have no report. Duplicates
// are requested once.
func (c *Client) ComponentReports(ctx context.Context, coordinates []string) ([]ComponentReport, error) {
	var unique []string
	seen := make(map[string]bool)
	for _, coord := range coordinates {
		key := strings.ToLower(coord)
		if coord == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, coord)
	}

	byKey := make(map[string]ComponentReport, len(unique))
	missing := unique
	if c.cache != nil {
		cached, err := c.cache.Get(unique)
		if err != nil {
			log.Warnf("ossindex: reading cache: %v", err)
		}
		missing = missing[:0:0]
		for _, coord := range unique {
			if r, ok := cached[strings.ToLower(coord)]; ok {
				byKey[strings.ToLower(coord)] = r
			} else {
				missing = append(missing, coord)
			}
		}
		log.Debugf("ossindex: %d of %d components cached", len(unique)-len(missing), len(unique))
	}

	chunks := chunk(missing, MaxCoordinatesPerRequest)
	results := make([][]ComponentReport, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, ch := range chunks {
		g.Go(func() error {
			reports, err := c.fetch(gctx, ch)
			if err != nil {
				return err
			}
			results[i] = reports
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fetched []ComponentReport
	for _, reports := range results {
		fetched = append(fetched, reports...)
	}
	for _, r := range fetched {
		byKey[strings.ToLower(r.Coordinates)] = r
	}
	if c.cache != nil && len(fetched) > 0 {
		if err := c.cache.Put(fetched); err != nil {
			log.Warnf("ossindex: writing cache: %v", err)
		}
	}

	out := make([]ComponentReport, 0, len(unique))
	for _, coord := range unique {
		if r, ok := byKey[strings.ToLower(coord)]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func chunk(s []string, size int) [][]string {
	var chunks [][]string
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}

// fetch posts one batch, retrying rate limited and server side failures.
func (c *Client) fetch(ctx context.Context, coordinates []string) ([]ComponentReport, error) {
	body, err := json.Marshal(componentReportRequest{Coordinates: coordinates})
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxElapsedTime = 0

	var reports []ComponentReport
	op := func() error {
		var err error
		reports, err = c.post(ctx, body)
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warnf("ossindex: %v, retrying in %s", err, wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx), notify); err != nil {
		return nil, err
	}
	return reports, nil
}

// post sends one request. Errors that are worth retrying are returned as is,
// all others as *backoff.PermanentError.
func (c *Client) post(ctx context.Context, body []byte) ([]ComponentReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+componentReportPath, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", requestContentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent)
	if c.username != "" && c.token != "" {
		req.SetBasicAuth(c.username, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var reports []ComponentReport
		if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("ossindex: decoding response: %w", err))
		}
		return reports, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, apiError(resp)
	default:
		return nil, backoff.Permanent(apiError(resp))
	}
}

func apiError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

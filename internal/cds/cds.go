// Package cds downloads ERA5-Land reanalysis data from the Copernicus
// Climate Data Store. The client speaks the CDS retrieve API directly:
// a request is submitted for a dataset, the resulting job is polled
// until it completes, and the produced asset is streamed to a local
// file. Credentials follow the conventional .cdsapirc layout.
package cds

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNoCredentials indicates a missing or incomplete .cdsapirc file.
	ErrNoCredentials = errors.New("cds: missing url or key in credentials")

	// ErrJobFailed indicates the data store reported the retrieval as failed.
	ErrJobFailed = errors.New("cds: retrieval job failed")
)

// ERA5LandMonthly is the dataset the workspace's climate inputs come from.
const ERA5LandMonthly = "reanalysis-era5-land-monthly-means"

// Credentials holds the CDS endpoint and API key.
type Credentials struct {
	URL string
	Key string
}

// DefaultCredentialsPath returns the conventional credentials location,
// .cdsapirc in the user's home directory.
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cds: locate home directory: %w", err)
	}
	return filepath.Join(home, ".cdsapirc"), nil
}

// LoadCredentials reads a .cdsapirc-style file of "url:" and "key:" lines.
func LoadCredentials(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("cds: open credentials: %w", err)
	}
	defer f.Close()

	var c Credentials
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "url":
			c.URL = strings.TrimRight(strings.TrimSpace(value), "/")
		case "key":
			c.Key = strings.TrimSpace(value)
		}
	}
	if err := sc.Err(); err != nil {
		return Credentials{}, fmt.Errorf("cds: read credentials: %w", err)
	}
	if c.URL == "" || c.Key == "" {
		return Credentials{}, fmt.Errorf("%w: %s", ErrNoCredentials, path)
	}
	return c, nil
}

// Request describes one monthly-means retrieval: a single variable over
// whole years, every month and hour, clipped to a bounding box.
type Request struct {
	Variable string
	Years    []int
	Area     [4]float64 // north, west, south, east in degrees
}

// MarshalJSON renders the request in the form the retrieve API expects.
func (r Request) MarshalJSON() ([]byte, error) {
	years := make([]string, len(r.Years))
	for i, y := range r.Years {
		years[i] = fmt.Sprintf("%d", y)
	}
	months := make([]string, 12)
	for i := range months {
		months[i] = fmt.Sprintf("%02d", i+1)
	}
	hours := make([]string, 24)
	for i := range hours {
		hours[i] = fmt.Sprintf("%02d:00", i)
	}
	return json.Marshal(map[string]any{
		"product_type":    []string{"monthly_averaged_reanalysis"},
		"variable":        r.Variable,
		"year":            years,
		"month":           months,
		"time":            hours,
		"data_format":     "netcdf",
		"download_format": "unarchived",
		"area":            r.Area[:],
	})
}

// Client talks to one CDS endpoint.
type Client struct {
	creds Credentials
	http  *http.Client

	// PollInterval is the delay between job status checks.
	PollInterval time.Duration
}

// NewClient returns a client for the given credentials.
func NewClient(creds Credentials) *Client {
	return &Client{
		creds:        creds,
		http:         &http.Client{Timeout: 5 * time.Minute},
		PollInterval: 5 * time.Second,
	}
}

type jobStatus struct {
	JobID  string `json:"jobID"`
	Status string `json:"status"`
}

type jobResults struct {
	Asset struct {
		Value struct {
			Href string `json:"href"`
		} `json:"value"`
	} `json:"asset"`
}

// Retrieve submits a request against a dataset, waits for the job to
// complete and downloads the result to outfile. The file appears only
// on success; failures leave nothing behind. The context bounds the
// whole submit, poll and download sequence.
func (c *Client) Retrieve(ctx context.Context, dataset string, req Request, outfile string) error {
	job, err := c.submit(ctx, dataset, req)
	if err != nil {
		return err
	}
	if err := c.wait(ctx, job); err != nil {
		return err
	}
	href, err := c.resultURL(ctx, job)
	if err != nil {
		return err
	}
	return c.download(ctx, href, outfile)
}

func (c *Client) submit(ctx context.Context, dataset string, req Request) (string, error) {
	body, err := json.Marshal(map[string]any{"inputs": req})
	if err != nil {
		return "", fmt.Errorf("cds: encode request: %w", err)
	}
	url := fmt.Sprintf("%s/retrieve/v1/processes/%s/execution", c.creds.URL, dataset)
	var st jobStatus
	if err := c.doJSON(ctx, http.MethodPost, url, bytes.NewReader(body), &st); err != nil {
		return "", fmt.Errorf("cds: submit %s: %w", dataset, err)
	}
	if st.JobID == "" {
		return "", fmt.Errorf("cds: submit %s: response carried no job id", dataset)
	}
	return st.JobID, nil
}

func (c *Client) wait(ctx context.Context, jobID string) error {
	url := fmt.Sprintf("%s/retrieve/v1/jobs/%s", c.creds.URL, jobID)
	for {
		var st jobStatus
		if err := c.doJSON(ctx, http.MethodGet, url, nil, &st); err != nil {
			return fmt.Errorf("cds: poll job %s: %w", jobID, err)
		}
		switch st.Status {
		case "successful":
			return nil
		case "failed":
			return fmt.Errorf("%w: job %s", ErrJobFailed, jobID)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.PollInterval):
		}
	}
}

func (c *Client) resultURL(ctx context.Context, jobID string) (string, error) {
	url := fmt.Sprintf("%s/retrieve/v1/jobs/%s/results", c.creds.URL, jobID)
	var res jobResults
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &res); err != nil {
		return "", fmt.Errorf("cds: job %s results: %w", jobID, err)
	}
	if res.Asset.Value.Href == "" {
		return "", fmt.Errorf("cds: job %s produced no asset", jobID)
	}
	return res.Asset.Value.Href, nil
}

func (c *Client) download(ctx context.Context, href, outfile string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return fmt.Errorf("cds: download: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.creds.Key)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cds: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cds: download: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outfile), ".cds-*")
	if err != nil {
		return fmt.Errorf("cds: download: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("cds: download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cds: download: %w", err)
	}
	if err := os.Rename(tmp.Name(), outfile); err != nil {
		return fmt.Errorf("cds: download: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("PRIVATE-TOKEN", c.creds.Key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package cds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cdsapirc")
	content := "# CDS credentials\nurl: https://cds.example.org/api/\nkey: abc123\nverify: 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.URL != "https://cds.example.org/api" {
		t.Errorf("url %q, trailing slash should be stripped", c.URL)
	}
	if c.Key != "abc123" {
		t.Errorf("key %q", c.Key)
	}
}

func TestLoadCredentialsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cdsapirc")
	if err := os.WriteFile(path, []byte("url: https://cds.example.org\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentials(path); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestRequestMarshal(t *testing.T) {
	req := Request{
		Variable: "2m_temperature",
		Years:    []int{2013, 2014},
		Area:     [4]float64{4.8, 116.8, 4.6, 117.0},
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	if got := decoded["variable"]; got != "2m_temperature" {
		t.Errorf("variable %v", got)
	}
	if months := decoded["month"].([]any); len(months) != 12 {
		t.Errorf("expected 12 months, got %d", len(months))
	}
	if hours := decoded["time"].([]any); len(hours) != 24 || hours[0] != "00:00" {
		t.Errorf("unexpected hours %v", hours)
	}
	if years := decoded["year"].([]any); years[0] != "2013" {
		t.Errorf("years should be strings, got %v", years)
	}
	if decoded["data_format"] != "netcdf" || decoded["download_format"] != "unarchived" {
		t.Errorf("unexpected formats in %v", decoded)
	}
}

func TestRetrieve(t *testing.T) {
	const payload = "netcdf bytes"
	var polls int

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("POST /retrieve/v1/processes/"+ERA5LandMonthly+"/execution", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("PRIVATE-TOKEN") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body struct {
			Inputs map[string]any `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Inputs["variable"] != "total_precipitation" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"jobID": "job-1", "status": "accepted"})
	})
	mux.HandleFunc("GET /retrieve/v1/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "running"
		if polls >= 2 {
			status = "successful"
		}
		json.NewEncoder(w).Encode(map[string]string{"jobID": "job-1", "status": status})
	})
	mux.HandleFunc("GET /retrieve/v1/jobs/job-1/results", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"asset": {"value": {"href": %q}}}`, srv.URL+"/asset.nc")
	})
	mux.HandleFunc("GET /asset.nc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Credentials{URL: srv.URL, Key: "secret"})
	c.PollInterval = time.Millisecond

	outfile := filepath.Join(t.TempDir(), "era5.nc")
	req := Request{Variable: "total_precipitation", Years: []int{2013}, Area: [4]float64{4.8, 116.8, 4.6, 117.0}}
	if err := c.Retrieve(context.Background(), ERA5LandMonthly, req, outfile); err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	got, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != payload {
		t.Errorf("downloaded %q, expected %q", got, payload)
	}
	if polls < 2 {
		t.Errorf("expected at least two status polls, got %d", polls)
	}
}

func TestRetrieveJobFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /retrieve/v1/processes/"+ERA5LandMonthly+"/execution", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"jobID": "job-2", "status": "accepted"})
	})
	mux.HandleFunc("GET /retrieve/v1/jobs/job-2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"jobID": "job-2", "status": "failed"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Credentials{URL: srv.URL, Key: "secret"})
	c.PollInterval = time.Millisecond

	outfile := filepath.Join(t.TempDir(), "era5.nc")
	req := Request{Variable: "total_precipitation", Years: []int{2013}}
	err := c.Retrieve(context.Background(), ERA5LandMonthly, req, outfile)
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
	if _, err := os.Stat(outfile); !os.IsNotExist(err) {
		t.Errorf("failed retrieval must not leave a file behind")
	}
}

// Package storage keeps a catalog of derived datasets so each output
// file stays traceable to the step, inputs and settings that produced
// it.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Record describes one derived dataset.
type Record struct {
	ID        string    `json:"id"`
	Step      string    `json:"step"`
	Timestamp time.Time `json:"timestamp"`
	Site      string    `json:"site"`
	Inputs    []string  `json:"inputs"`
	Output    string    `json:"output"`
	Variables []string  `json:"variables"`
}

// Save catalogs a freshly written output file and returns the record id.
func (s *Store) Save(step, site, output string, inputs, variables []string) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	id := fmt.Sprintf("%s_%d", step, time.Now().Unix())
	rec := Record{
		ID:        id,
		Step:      step,
		Timestamp: time.Now(),
		Site:      site,
		Inputs:    inputs,
		Output:    output,
		Variables: variables,
	}

	path := filepath.Join(s.baseDir, id+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return "", err
	}
	return id, nil
}

// List returns all records, oldest first. Unreadable entries are
// skipped.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}

	records := make([]Record, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// Load returns one record by id.
func (s *Store) Load(id string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id+".json"))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

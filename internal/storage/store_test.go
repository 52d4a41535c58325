package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadList(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "catalog"))

	id, err := s.Save("climate", "maliau", "climate.nc",
		[]string{"era5.nc"}, []string{"air_temperature", "relative_humidity"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, err := s.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rec.Step != "climate" || rec.Site != "maliau" {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(rec.Inputs) != 1 || rec.Inputs[0] != "era5.nc" {
		t.Errorf("inputs not preserved: %v", rec.Inputs)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestListEmptyDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))
	records, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestListSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if _, err := s.Save("elevation", "maliau", "elevation.nc", nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected the broken entry skipped, got %d records", len(records))
	}
}

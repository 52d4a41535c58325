package table

import (
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	in := "taxon,dbh,height\nShorea,12.5,18.0\nParashorea,40.1,45.5\n"

	tab, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if tab.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", tab.Len())
	}

	dbh, err := tab.Float64Column("dbh")
	if err != nil {
		t.Fatalf("dbh column: %v", err)
	}
	if dbh[1] != 40.1 {
		t.Errorf("expected 40.1, got %v", dbh[1])
	}

	taxa, err := tab.StringColumn("taxon")
	if err != nil {
		t.Fatalf("taxon column: %v", err)
	}
	if taxa[0] != "Shorea" {
		t.Errorf("expected Shorea, got %s", taxa[0])
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	tab, err := ReadCSV(strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tab.Len() != 0 {
		t.Errorf("expected empty table, got %d rows", tab.Len())
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
}

func TestUnknownColumn(t *testing.T) {
	tab := New([]string{"a"})
	_, err := tab.Float64Column("b")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestRaggedRow(t *testing.T) {
	tab := New([]string{"a", "b"})
	err := tab.Append([]string{"1"})
	if !errors.Is(err, ErrRaggedRow) {
		t.Errorf("expected ErrRaggedRow, got %v", err)
	}
}

func TestBadFloat(t *testing.T) {
	tab := New([]string{"v"})
	if err := tab.Append([]string{"not-a-number"}); err != nil {
		t.Fatal(err)
	}
	if _, err := tab.Float64Column("v"); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tab := New([]string{"pft", "h_max"})
	if err := tab.Append([]string{"emergent", "60.5"}); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := tab.WriteCSV(&sb); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	back, err := ReadCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("re-read failed: %v", err)
	}
	v, err := back.Cell(0, "h_max")
	if err != nil {
		t.Fatal(err)
	}
	if v != "60.5" {
		t.Errorf("expected 60.5, got %s", v)
	}
}

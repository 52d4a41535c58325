// Package pft classifies tree census taxa into the fixed set of plant
// functional types used as the category axis of the simulation inputs.
package pft

import (
	"errors"
	"fmt"

	"github.com/ecodyn/vedata/internal/table"
)

// PFT is a plant functional type, a categorical grouping of tree
// species by ecological strategy.
type PFT string

// The fixed set of categories. Classification never produces a value
// outside this set; Unclassified is a sentinel for errors only and is
// never emitted by a successful classification.
const (
	Emergent     PFT = "emergent"
	Overstory    PFT = "overstory"
	Understory   PFT = "understory"
	Pioneer      PFT = "pioneer"
	Unclassified PFT = "unclassified"
)

// All lists the categories a classification can produce, in the order
// they appear in output tables.
var All = []PFT{Emergent, Overstory, Understory, Pioneer}

// Stature and strategy thresholds. Light-demanding, fast-growing taxa
// (low wood density) are pioneers regardless of stature; the shade
// tolerant remainder split by adult maximum height.
const (
	pioneerWoodDensity = 0.4  // g cm-3
	emergentHeight     = 45.0 // m
	overstoryHeight    = 20.0 // m
	maxWoodDensity     = 1.5  // g cm-3, sanity bound for field data
)

var (
	// ErrBadTraits indicates trait values outside their physical range.
	ErrBadTraits = errors.New("pft: trait values out of range")
)

// Traits are the per-taxon values the classification runs on.
type Traits struct {
	MaxHeight   float64 // adult maximum height, m
	WoodDensity float64 // stem wood density, g cm-3
}

// Classify assigns one of the fixed categories from a taxon's traits.
func Classify(tr Traits) (PFT, error) {
	if tr.MaxHeight <= 0 {
		return Unclassified, fmt.Errorf("%w: max height %v", ErrBadTraits, tr.MaxHeight)
	}
	if tr.WoodDensity <= 0 || tr.WoodDensity > maxWoodDensity {
		return Unclassified, fmt.Errorf("%w: wood density %v", ErrBadTraits, tr.WoodDensity)
	}

	switch {
	case tr.WoodDensity < pioneerWoodDensity:
		return Pioneer, nil
	case tr.MaxHeight >= emergentHeight:
		return Emergent, nil
	case tr.MaxHeight >= overstoryHeight:
		return Overstory, nil
	default:
		return Understory, nil
	}
}

// Index returns the position of a category in All, or -1.
func Index(p PFT) int {
	for i, q := range All {
		if q == p {
			return i
		}
	}
	return -1
}

// Summary is the per-category share of a classified census.
type Summary struct {
	PFT      PFT
	Count    int
	Fraction float64
}

// ClassifyTable classifies every row of a census table, reading the
// taxon name and trait columns by name. It returns a classification
// table (taxon, pft) and the per-category summary. A row the rules
// cannot place aborts the whole classification.
func ClassifyTable(census *table.Table, taxonCol, heightCol, densityCol string) (*table.Table, []Summary, error) {
	taxa, err := census.StringColumn(taxonCol)
	if err != nil {
		return nil, nil, err
	}
	heights, err := census.Float64Column(heightCol)
	if err != nil {
		return nil, nil, err
	}
	densities, err := census.Float64Column(densityCol)
	if err != nil {
		return nil, nil, err
	}

	out := table.New([]string{"taxon", "pft"})
	counts := make(map[PFT]int)
	for i := range taxa {
		p, err := Classify(Traits{MaxHeight: heights[i], WoodDensity: densities[i]})
		if err != nil {
			return nil, nil, fmt.Errorf("pft: row %d (%s): %w", i, taxa[i], err)
		}
		counts[p]++
		if err := out.Append([]string{taxa[i], string(p)}); err != nil {
			return nil, nil, err
		}
	}

	total := len(taxa)
	summary := make([]Summary, len(All))
	for i, p := range All {
		s := Summary{PFT: p, Count: counts[p]}
		if total > 0 {
			s.Fraction = float64(counts[p]) / float64(total)
		}
		summary[i] = s
	}
	return out, summary, nil
}

// SummaryTable renders the per-category summary as a derived parameter
// table with the column names downstream steps read.
func SummaryTable(summary []Summary) (*table.Table, error) {
	t := table.New([]string{"pft", "count", "fraction"})
	for _, s := range summary {
		// rows are fixed-order over All, so downstream joins are stable
		if err := t.Append([]string{string(s.PFT), fmt.Sprintf("%d", s.Count), table.FormatFloat(s.Fraction)}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

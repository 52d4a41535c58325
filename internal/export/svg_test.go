package export

import (
	"math"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
)

func TestSeriesToSVG(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{25.0, 25.5, 24.8, 25.2}

	svg := SeriesToSVG(xs, ys, 640, 240, "#00ff00")
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing xml header")
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("missing stroke colour")
	}
	if strings.Count(svg, "L") != 3 {
		t.Errorf("expected 3 line segments, got %d", strings.Count(svg, "L"))
	}
}

func TestSeriesToSVGGaps(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{1, math.NaN(), 2, 3}

	svg := SeriesToSVG(xs, ys, 100, 100, "#fff")
	// the NaN restarts the path, so two M commands appear
	if got := strings.Count(svg, "M"); got != 2 {
		t.Errorf("expected 2 path starts, got %d", got)
	}
}

func TestSeriesToSVGDegenerate(t *testing.T) {
	if svg := SeriesToSVG([]float64{0}, []float64{1}, 100, 100, "#fff"); svg != "" {
		t.Error("single point should render nothing")
	}
	if svg := SeriesToSVG([]float64{0, 1}, []float64{math.NaN(), math.NaN()}, 100, 100, "#fff"); svg != "" {
		t.Error("all-NaN series should render nothing")
	}
}

func TestGridToSVG(t *testing.T) {
	a := sparse.ZerosDense(2, 3)
	a.Set(10, 0, 0)
	a.Set(20, 1, 2)
	a.Set(math.NaN(), 0, 1)

	svg := GridToSVG(a, 4)
	if !strings.Contains(svg, `width="12" height="8"`) {
		t.Errorf("unexpected dimensions in %s", svg[:120])
	}
	// 6 cells, one NaN, so 5 filled rects plus the background
	if got := strings.Count(svg, "<rect"); got != 6 {
		t.Errorf("expected 6 rects, got %d", got)
	}
}

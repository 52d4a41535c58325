package grid

// Site presets for grids used by existing field campaigns.
var sitePresets = map[string]Grid{
	// Maliau Basin, Sabah: 50 x 50 cells at 90 m in UTM 50N. The origin
	// is the prototype WGS84 extent rounded down to neat metre
	// coordinates with one cell added to keep the original coverage.
	"maliau": {EPSG: 32650, Xoff: 494300, Yoff: 521300, Nx: 50, Ny: 50, Res: 90},
}

// Preset returns a copy of a named site grid, or nil if unknown.
func Preset(name string) *Grid {
	g, ok := sitePresets[name]
	if !ok {
		return nil
	}
	return &g
}

// ListPresets returns the known site preset names.
func ListPresets() []string {
	names := make([]string, 0, len(sitePresets))
	for n := range sitePresets {
		names = append(names, n)
	}
	return names
}

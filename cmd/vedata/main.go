package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/ecodyn/vedata/internal/allom"
	"github.com/ecodyn/vedata/internal/analysis"
	"github.com/ecodyn/vedata/internal/cds"
	"github.com/ecodyn/vedata/internal/climate"
	"github.com/ecodyn/vedata/internal/cohort"
	"github.com/ecodyn/vedata/internal/config"
	"github.com/ecodyn/vedata/internal/dem"
	"github.com/ecodyn/vedata/internal/export"
	"github.com/ecodyn/vedata/internal/grid"
	"github.com/ecodyn/vedata/internal/ncfile"
	"github.com/ecodyn/vedata/internal/pft"
	"github.com/ecodyn/vedata/internal/storage"
	"github.com/ecodyn/vedata/internal/table"
	"github.com/ecodyn/vedata/internal/tui"
)

var (
	dataDir     string
	outFile     string
	summaryFile string
	gridFile    string
	preset      string
	site        string
	configFile  string
	// grid init parameters
	epsg int
	xoff float64
	yoff float64
	nx   int
	ny   int
	res  float64
	// climate parameters
	co2 float64
	// elevation parameters
	nodata float64
	// plant generation parameters
	months    int
	startDate string
	subcanopy float64
	seedbank  float64
	shortwave float64
	// census column names
	taxonCol   string
	heightCol  string
	densityCol string
	pftCol     string
	dbhCol     string
	slaCol     string
	sheet      string
	// download parameters
	credFile string
	outDir   string
	// plot parameters
	varName  string
	cellID   int
	svgFile  string
	spectrum bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vedata",
		Short: "ecological simulation data preparation workspace",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vedata", "catalog directory")

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "site grid definitions",
	}

	gridInitCmd := &cobra.Command{
		Use:   "init",
		Short: "write a site grid definition",
		RunE:  gridInit,
	}
	gridInitCmd.Flags().StringVar(&preset, "preset", "", "site preset name")
	gridInitCmd.Flags().IntVar(&epsg, "epsg", 32650, "projected EPSG code")
	gridInitCmd.Flags().Float64Var(&xoff, "xoff", 0, "west edge, m")
	gridInitCmd.Flags().Float64Var(&yoff, "yoff", 0, "south edge, m")
	gridInitCmd.Flags().IntVar(&nx, "nx", 50, "cells along x")
	gridInitCmd.Flags().IntVar(&ny, "ny", 50, "cells along y")
	gridInitCmd.Flags().Float64Var(&res, "res", 90, "cell size, m")
	gridInitCmd.Flags().StringVar(&outFile, "out", "grid.toml", "output definition file")

	gridShowCmd := &cobra.Command{
		Use:   "show [definition.toml]",
		Short: "summarise a site grid definition",
		Args:  cobra.ExactArgs(1),
		RunE:  gridShow,
	}

	gridPresetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list site presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range grid.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}
	gridCmd.AddCommand(gridInitCmd, gridShowCmd, gridPresetsCmd)

	climateCmd := &cobra.Command{
		Use:   "climate",
		Short: "climate data preparation",
	}
	climateProcessCmd := &cobra.Command{
		Use:   "process [era5.nc]",
		Short: "convert ERA5 monthly means to simulation inputs",
		Args:  cobra.ExactArgs(1),
		RunE:  climateProcess,
	}
	climateProcessCmd.Flags().StringVar(&gridFile, "grid", "", "site definition file")
	climateProcessCmd.Flags().StringVar(&preset, "preset", "maliau", "site preset when no --grid given")
	climateProcessCmd.Flags().Float64Var(&co2, "co2", config.DefaultCO2, "atmospheric CO2, ppm")
	climateProcessCmd.Flags().StringVar(&outFile, "out", "climate.nc", "output file")
	climateCmd.AddCommand(climateProcessCmd)

	elevationCmd := &cobra.Command{
		Use:   "elevation",
		Short: "elevation data preparation",
	}
	elevationProcessCmd := &cobra.Command{
		Use:   "process [dem.nc]",
		Short: "resample a DEM onto the site grid",
		Args:  cobra.ExactArgs(1),
		RunE:  elevationProcess,
	}
	elevationProcessCmd.Flags().StringVar(&gridFile, "grid", "", "site definition file")
	elevationProcessCmd.Flags().StringVar(&preset, "preset", "maliau", "site preset when no --grid given")
	elevationProcessCmd.Flags().Float64Var(&nodata, "nodata", config.DefaultFillValue, "source nodata value")
	elevationProcessCmd.Flags().StringVar(&outFile, "out", "elevation.nc", "output file")
	elevationCmd.AddCommand(elevationProcessCmd)

	plantCmd := &cobra.Command{
		Use:   "plant",
		Short: "plant community preparation",
	}
	plantGenerateCmd := &cobra.Command{
		Use:   "generate [cohorts.csv]",
		Short: "tile a cohort distribution across the site grid",
		Args:  cobra.ExactArgs(1),
		RunE:  plantGenerate,
	}
	plantGenerateCmd.Flags().StringVar(&gridFile, "grid", "", "site definition file")
	plantGenerateCmd.Flags().StringVar(&preset, "preset", "maliau", "site preset when no --grid given")
	plantGenerateCmd.Flags().StringVar(&site, "site", "", "configuration preset supplying defaults")
	plantGenerateCmd.Flags().IntVar(&months, "months", config.DefaultMonths, "length of the time axis")
	plantGenerateCmd.Flags().StringVar(&startDate, "start", config.DefaultStartDate, "first month (YYYY-MM-DD)")
	plantGenerateCmd.Flags().Float64Var(&subcanopy, "subcanopy", config.DefaultSubcanopyBiomass, "subcanopy biomass, kg m-2")
	plantGenerateCmd.Flags().Float64Var(&seedbank, "seedbank", config.DefaultSeedbankBiomass, "seedbank biomass, kg m-2")
	plantGenerateCmd.Flags().Float64Var(&shortwave, "shortwave", config.DefaultShortwave, "downward shortwave fill, W m-2")
	plantGenerateCmd.Flags().StringVar(&sheet, "sheet", "", "workbook sheet (xlsx input)")
	plantGenerateCmd.Flags().StringVar(&outFile, "out", "plants.nc", "output file")
	plantCmd.AddCommand(plantGenerateCmd)

	classifyCmd := &cobra.Command{
		Use:   "classify [census.csv]",
		Short: "classify census taxa into plant functional types",
		Args:  cobra.ExactArgs(1),
		RunE:  classifyCensus,
	}
	classifyCmd.Flags().StringVar(&taxonCol, "taxon-col", "taxon", "taxon name column")
	classifyCmd.Flags().StringVar(&heightCol, "height-col", "max_height", "maximum height column, m")
	classifyCmd.Flags().StringVar(&densityCol, "density-col", "wood_density", "wood density column, g cm-3")
	classifyCmd.Flags().StringVar(&sheet, "sheet", "", "workbook sheet (xlsx input)")
	classifyCmd.Flags().StringVar(&outFile, "out", "", "classification CSV (default stdout summary only)")
	classifyCmd.Flags().StringVar(&summaryFile, "summary", "", "per-category summary CSV")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "parameter estimation from census data",
	}
	fitAllometryCmd := &cobra.Command{
		Use:   "allometry [census.csv]",
		Short: "fit per-PFT height-diameter curves",
		Args:  cobra.ExactArgs(1),
		RunE:  fitAllometry,
	}
	fitAllometryCmd.Flags().StringVar(&pftCol, "pft-col", "pft", "functional type column")
	fitAllometryCmd.Flags().StringVar(&dbhCol, "dbh-col", "dbh", "stem diameter column, m")
	fitAllometryCmd.Flags().StringVar(&heightCol, "height-col", "height", "height column, m")
	fitAllometryCmd.Flags().StringVar(&densityCol, "density-col", "wood_density", "wood density column, g cm-3 (optional)")
	fitAllometryCmd.Flags().StringVar(&slaCol, "sla-col", "sla", "specific leaf area column, m2 kg-1 (optional)")
	fitAllometryCmd.Flags().StringVar(&sheet, "sheet", "", "workbook sheet (xlsx input)")
	fitAllometryCmd.Flags().StringVar(&outFile, "out", "", "parameter CSV (default stdout only)")
	fitCmd.AddCommand(fitAllometryCmd)

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "primary data downloads",
	}
	downloadERA5Cmd := &cobra.Command{
		Use:   "era5",
		Short: "download ERA5-Land monthly means from the climate data store",
		RunE:  downloadERA5,
	}
	downloadERA5Cmd.Flags().StringVar(&credFile, "credentials", "", "cdsapirc path (default ~/.cdsapirc)")
	downloadERA5Cmd.Flags().StringVar(&site, "site", "", "configuration preset supplying the request")
	downloadERA5Cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml, overrides --site)")
	downloadERA5Cmd.Flags().StringVar(&outDir, "out-dir", ".", "output directory")
	downloadCmd.AddCommand(downloadERA5Cmd)

	infoCmd := &cobra.Command{
		Use:   "info [file.nc]",
		Short: "summarise a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  showInfo,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [file.nc]",
		Short: "plot a variable's time series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotVariable,
	}
	plotCmd.Flags().StringVar(&varName, "var", "air_temperature_ref", "variable to plot")
	plotCmd.Flags().IntVar(&cellID, "cell", 0, "cell id to sample")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write an SVG plot")
	plotCmd.Flags().BoolVar(&spectrum, "spectrum", false, "plot the power spectrum instead of the series")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list cataloged outputs",
		RunE:  listOutputs,
	}

	browseCmd := &cobra.Command{
		Use:   "browse [file.nc]",
		Short: "browse a dataset interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := ncfile.Read(args[0])
			if err != nil {
				return err
			}
			return tui.Run(args[0], d)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "workspace configuration",
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(outFile, config.DefaultConfig())
		},
	}
	configInitCmd.Flags().StringVar(&outFile, "out", "vedata.yaml", "output file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(gridCmd, climateCmd, elevationCmd, plantCmd, classifyCmd, fitCmd, downloadCmd, infoCmd, plotCmd, listCmd, browseCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// siteGrid resolves the target grid from --grid or --preset.
func siteGrid() (*grid.Grid, error) {
	if gridFile != "" {
		def, err := grid.LoadTOML(gridFile)
		if err != nil {
			return nil, err
		}
		return def.Grid()
	}
	g := grid.Preset(preset)
	if g == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, grid.ListPresets())
	}
	return g, nil
}

// catalog records a written dataset; failures are reported but never
// fail the step that already produced its output.
func catalog(step, output string, inputs []string, d *ncfile.Dataset) {
	vars := make([]string, 0, len(d.Variables()))
	for _, v := range d.Variables() {
		vars = append(vars, v.Name)
	}
	site := preset
	if gridFile != "" {
		site = gridFile
	}
	if _, err := storage.New(dataDir).Save(step, site, output, inputs, vars); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cataloging %s: %v\n", output, err)
	}
}

// readCensus loads a census table from CSV or a spreadsheet.
func readCensus(path string) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		return table.ReadWorkbook(path, sheet)
	}
	return table.ReadCSVFile(path)
}

func gridInit(cmd *cobra.Command, args []string) error {
	var g *grid.Grid
	var err error
	if preset != "" {
		g = grid.Preset(preset)
		if g == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, grid.ListPresets())
		}
	} else {
		g, err = grid.New(epsg, xoff, yoff, nx, ny, res)
		if err != nil {
			return err
		}
	}

	def, err := g.Definition()
	if err != nil {
		return err
	}
	if err := grid.SaveTOML(outFile, def); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d cells at %gm)\n", outFile, g.Nx, g.Ny, g.Res)
	return nil
}

func gridShow(cmd *cobra.Command, args []string) error {
	def, err := grid.LoadTOML(args[0])
	if err != nil {
		return err
	}
	g, err := def.Grid()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "epsg\t%d\n", g.EPSG)
	fmt.Fprintf(w, "cells\t%d x %d\n", g.Nx, g.Ny)
	fmt.Fprintf(w, "resolution\t%g m\n", g.Res)
	fmt.Fprintf(w, "cell area\t%g m2\n", g.CellArea())
	b := g.ProjectedBounds()
	fmt.Fprintf(w, "extent\t%g %g to %g %g\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	if wgs, err := g.WGS84Bounds(); err == nil {
		fmt.Fprintf(w, "wgs84\t%.4f %.4f to %.4f %.4f\n", wgs.MinX, wgs.MinY, wgs.MaxX, wgs.MaxY)
	}
	return w.Flush()
}

func climateProcess(cmd *cobra.Command, args []string) error {
	g, err := siteGrid()
	if err != nil {
		return err
	}

	in, err := ncfile.Read(args[0])
	if err != nil {
		return err
	}

	out, err := climate.Process(in, g, co2)
	if err != nil {
		return err
	}
	if err := ncfile.Write(outFile, out); err != nil {
		return err
	}
	catalog("climate", outFile, args, out)

	fmt.Printf("wrote %s\n", outFile)
	for _, v := range out.Variables() {
		fmt.Printf("  %s (%s)\n", v.Name, strings.Join(v.Dims, ", "))
	}
	return nil
}

func elevationProcess(cmd *cobra.Command, args []string) error {
	g, err := siteGrid()
	if err != nil {
		return err
	}

	in, err := ncfile.Read(args[0])
	if err != nil {
		return err
	}
	xs, err := in.Variable("x")
	if err != nil {
		return err
	}
	ys, err := in.Variable("y")
	if err != nil {
		return err
	}
	elev, err := in.Variable("elevation")
	if err != nil {
		return err
	}
	if len(xs.Data.Elements) < 2 || len(ys.Data.Elements) < 2 {
		return fmt.Errorf("source raster needs at least two cells per axis")
	}

	src := &dem.Source{
		Xo:     xs.Data.Elements[0],
		Yo:     ys.Data.Elements[0],
		Res:    xs.Data.Elements[1] - xs.Data.Elements[0],
		Nodata: nodata,
		Data:   elev.Data,
	}
	resampled, err := dem.Resample(src, g)
	if err != nil {
		return err
	}

	out, err := dem.BuildDataset(resampled, g)
	if err != nil {
		return err
	}
	if err := ncfile.Write(outFile, out); err != nil {
		return err
	}
	catalog("elevation", outFile, args, out)
	fmt.Printf("wrote %s (%d points)\n", outFile, g.NCells())
	return nil
}

func plantGenerate(cmd *cobra.Command, args []string) error {
	// Apply the configuration preset for anything not set explicitly
	if site != "" {
		cfg := config.GetPreset(site)
		if cfg == nil {
			return fmt.Errorf("unknown site: %s (available: %v)", site, config.ListPresets())
		}
		if !cmd.Flags().Changed("months") {
			months = cfg.Climate.Months
		}
		if !cmd.Flags().Changed("start") {
			startDate = cfg.Climate.StartDate
		}
		if !cmd.Flags().Changed("subcanopy") {
			subcanopy = cfg.Plants.SubcanopyBiomass
		}
		if !cmd.Flags().Changed("seedbank") {
			seedbank = cfg.Plants.SeedbankBiomass
		}
		if !cmd.Flags().Changed("shortwave") {
			shortwave = cfg.Plants.Shortwave
		}
		if !cmd.Flags().Changed("preset") {
			preset = cfg.Site
		}
	}

	g, err := siteGrid()
	if err != nil {
		return err
	}

	cohorts, err := readCensus(args[0])
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return fmt.Errorf("bad start date %q: %w", startDate, err)
	}

	p := cohort.Params{
		SubcanopyBiomass: subcanopy,
		SeedbankBiomass:  seedbank,
		Shortwave:        shortwave,
		Months:           months,
		Start:            start,
	}
	out, err := cohort.BuildDataset(cohorts, g, p)
	if err != nil {
		return err
	}
	if err := ncfile.Write(outFile, out); err != nil {
		return err
	}
	catalog("plants", outFile, args, out)
	fmt.Printf("wrote %s (%d cohorts over %d cells)\n", outFile, cohorts.Len()*g.NCells(), g.NCells())
	return nil
}

func classifyCensus(cmd *cobra.Command, args []string) error {
	census, err := readCensus(args[0])
	if err != nil {
		return err
	}

	classified, summary, err := pft.ClassifyTable(census, taxonCol, heightCol, densityCol)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := classified.WriteCSVFile(outFile); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d taxa)\n\n", outFile, classified.Len())
	}
	if summaryFile != "" {
		st, err := pft.SummaryTable(summary)
		if err != nil {
			return err
		}
		if err := st.WriteCSVFile(summaryFile); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n\n", summaryFile)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PFT\tCOUNT\tFRACTION")
	for _, s := range summary {
		fmt.Fprintf(w, "%s\t%d\t%.3f\n", s.PFT, s.Count, s.Fraction)
	}
	return w.Flush()
}

func fitAllometry(cmd *cobra.Command, args []string) error {
	census, err := readCensus(args[0])
	if err != nil {
		return err
	}

	groups, err := census.StringColumn(pftCol)
	if err != nil {
		return err
	}
	dbh, err := census.Float64Column(dbhCol)
	if err != nil {
		return err
	}
	height, err := census.Float64Column(heightCol)
	if err != nil {
		return err
	}

	// trait columns are optional; censuses without them still fit
	var rho, sla []float64
	if census.HasColumn(densityCol) {
		if rho, err = census.Float64Column(densityCol); err != nil {
			return err
		}
	}
	if census.HasColumn(slaCol) {
		if sla, err = census.Float64Column(slaCol); err != nil {
			return err
		}
	}

	params, err := allom.FitByGroup(groups, dbh, height, rho, sla)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := params.WriteCSVFile(outFile); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n\n", outFile)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(params.Columns(), "\t")))
	for i := 0; i < params.Len(); i++ {
		cells := make([]string, 0, len(params.Columns()))
		for _, c := range params.Columns() {
			cell, err := params.Cell(i, c)
			if err != nil {
				return err
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func downloadERA5(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if site != "" {
		cfg = config.GetPreset(site)
		if cfg == nil {
			return fmt.Errorf("unknown site: %s (available: %v)", site, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	path := credFile
	if path == "" {
		var err error
		path, err = cds.DefaultCredentialsPath()
		if err != nil {
			return err
		}
	}
	creds, err := cds.LoadCredentials(path)
	if err != nil {
		return err
	}
	client := cds.NewClient(creds)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	for _, variable := range cfg.Download.Variables {
		outfile := filepath.Join(outDir, fmt.Sprintf("era5_%s.nc", variable))
		fmt.Printf("downloading %s...\n", variable)
		start := time.Now()
		req := cds.Request{
			Variable: variable,
			Years:    cfg.Download.Years,
			Area:     cfg.Download.BBox,
		}
		if err := client.Retrieve(cmd.Context(), cds.ERA5LandMonthly, req, outfile); err != nil {
			return err
		}
		fmt.Printf("  %s in %v\n", outfile, time.Since(start).Round(time.Second))
	}
	return nil
}

func listOutputs(cmd *cobra.Command, args []string) error {
	records, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no cataloged outputs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTEP\tTIME\tSITE\tOUTPUT\tVARS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			rec.ID,
			rec.Step,
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Site,
			rec.Output,
			len(rec.Variables),
		)
	}
	return w.Flush()
}

func showInfo(cmd *cobra.Command, args []string) error {
	d, err := ncfile.Read(args[0])
	if err != nil {
		return err
	}

	if title := d.Attr("title"); title != "" {
		fmt.Printf("%s\n\n", title)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIMENSION\tLENGTH")
	for _, dim := range d.Dims() {
		fmt.Fprintf(w, "%s\t%d\n", dim.Name, dim.Length)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIABLE\tDIMS\tUNITS\tDESCRIPTION")
	for _, v := range d.Variables() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Name, strings.Join(v.Dims, ","), v.Units, v.Description)
	}
	return w.Flush()
}

func plotVariable(cmd *cobra.Command, args []string) error {
	d, err := ncfile.Read(args[0])
	if err != nil {
		return err
	}
	v, err := d.Variable(varName)
	if err != nil {
		return err
	}

	// Spatial fields like mean_annual_temperature render as a cell map.
	if len(v.Dims) == 2 && v.Dims[0] == "y" && v.Dims[1] == "x" {
		if svgFile == "" {
			return fmt.Errorf("%s is a (y, x) field; use --svg to render it as a cell map", varName)
		}
		svg := export.GridToSVG(v.Data, 8)
		if svg == "" {
			return fmt.Errorf("nothing to plot for %s", varName)
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
		return nil
	}

	series, err := timeSeries(d, v, cellID)
	if err != nil {
		return err
	}

	caption := varName
	if v.Units != "" {
		caption = fmt.Sprintf("%s (%s), cell %d", varName, v.Units, cellID)
	}
	var period float64
	if spectrum {
		period = analysis.DominantPeriod(series)
		series = analysis.PowerSpectrum(series)
		caption = fmt.Sprintf("%s power spectrum, cell %d", varName, cellID)
	}
	graph := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)

	if spectrum && period > 0 {
		fmt.Printf("dominant period: %.1f samples\n", period)
	}

	if svgFile != "" {
		xs := make([]float64, len(series))
		for i := range xs {
			xs[i] = float64(i)
		}
		svg := export.SeriesToSVG(xs, series, 640, 240, "#00ff00")
		if svg == "" {
			return fmt.Errorf("nothing to plot for %s", varName)
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

// timeSeries extracts one cell's values along the variable's time axis.
// It understands the (time_index, y, x) climate layout and the
// (cell_id, time_index) plant layout; anything 1-D is returned whole.
func timeSeries(d *ncfile.Dataset, v *ncfile.Variable, cell int) ([]float64, error) {
	switch len(v.Dims) {
	case 1:
		return v.Data.Elements, nil
	case 2:
		nt := d.DimLength(v.Dims[1])
		if cell < 0 || cell >= v.Data.Shape[0] {
			return nil, fmt.Errorf("cell %d out of range [0, %d)", cell, v.Data.Shape[0])
		}
		out := make([]float64, nt)
		for t := 0; t < nt; t++ {
			out[t] = v.Data.Get(cell, t)
		}
		return out, nil
	case 3:
		nt := v.Data.Shape[0]
		ny, nx := v.Data.Shape[1], v.Data.Shape[2]
		if cell < 0 || cell >= ny*nx {
			return nil, fmt.Errorf("cell %d out of range [0, %d)", cell, ny*nx)
		}
		out := make([]float64, nt)
		for t := 0; t < nt; t++ {
			out[t] = v.Data.Get(t, cell/nx, cell%nx)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot plot %d-dimensional variable %s", len(v.Dims), v.Name)
	}
}

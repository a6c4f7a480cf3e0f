package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/AntonZelenin/planet-gravity/internal/analysis"
	"github.com/AntonZelenin/planet-gravity/internal/export"
	"github.com/AntonZelenin/planet-gravity/internal/storage"
)

var (
	particle  int
	axisName  string
	plotWidth int
	orbitW    int
	orbitH    int
	svgPath   string
)

func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot particle coordinates over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", -1, "particle index; -1 plots every particle")
	plotCmd.Flags().StringVar(&axisName, "axis", "x", "coordinate to plot (x, y, z)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital period analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&axisName, "axis", "x", "coordinate to analyze (x, y, z)")

	orbitsCmd := &cobra.Command{
		Use:   "orbits [run_id]",
		Short: "draw the paths of every particle",
		Args:  cobra.ExactArgs(1),
		RunE:  orbitsRun,
	}
	orbitsCmd.Flags().IntVar(&orbitW, "width", 80, "width in characters (pixels for svg)")
	orbitsCmd.Flags().IntVar(&orbitH, "height", 30, "height in characters (pixels for svg)")
	orbitsCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg image to this path instead")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export sampled positions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	return []*cobra.Command{listCmd, showCmd, plotCmd, analyzeCmd, orbitsCmd, exportCSVCmd, exportJSONCmd}
}

func parseAxis(name string) (analysis.Axis, error) {
	switch name {
	case "x":
		return analysis.AxisX, nil
	case "y":
		return analysis.AxisY, nil
	case "z":
		return analysis.AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q (want x, y or z)", name)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tBODIES\tDURATION\tDT\tSTEPS\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.4fs\t%d/%d\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Masses),
			run.Duration(),
			run.Dt,
			run.StepsTaken,
			run.Steps,
			run.Metrics["energy_drift"],
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	axis, err := parseAxis(axisName)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(samples))

	indices := []int{particle}
	if particle < 0 {
		indices = indices[:0]
		for i := range min(len(meta.Masses), 6) {
			indices = append(indices, i)
		}
	}

	for _, i := range indices {
		if i >= len(samples[0].Positions) || i >= len(meta.Masses) {
			return fmt.Errorf("run has %d particles, no index %d", len(samples[0].Positions), i)
		}
		data := make([]float64, len(samples))
		for j, s := range samples {
			data[j] = analysis.Component(s.Positions[i], axis)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(fmt.Sprintf("p%d.%s vs time (m=%g)", i, axis, meta.Masses[i])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	axis, err := parseAxis(axisName)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	samples = analysis.Uniform(samples, meta.SampleEvery)
	if len(samples) < 4 {
		return fmt.Errorf("run %s has too few samples to analyze", runID)
	}

	sampleDt := meta.Dt * float64(meta.SampleEvery)
	fmt.Printf("orbital analysis: %s\n", meta.ID)
	fmt.Printf("sample spacing: %.4fs over %.2fs\n\n", sampleDt, meta.Duration())

	for i := range meta.Masses {
		series := analysis.RelativeSeries(samples, meta.Masses, i, axis)
		ps := analysis.PowerSpectrum(series)
		if len(ps) > 8 {
			graph := asciigraph.Plot(ps[:len(ps)/4+1],
				asciigraph.Height(8),
				asciigraph.Width(60),
				asciigraph.Caption(fmt.Sprintf("power spectrum p%d.%s", i, axis)),
			)
			fmt.Println(graph)
		}

		if period, ok := analysis.DominantPeriod(series, sampleDt); ok {
			fmt.Printf("p%d (m=%g): dominant period %.3fs\n\n", i, meta.Masses[i], period)
		} else {
			fmt.Printf("p%d (m=%g): no periodic motion found\n\n", i, meta.Masses[i])
		}
	}
	return nil
}

func orbitsRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.OrbitsSVG(f, samples, meta.Masses, orbitW*10, orbitH*20); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		fmt.Printf("wrote %s\n", svgPath)
		return f.Close()
	}

	out := analysis.RenderOrbits(samples, orbitW, orbitH)
	if out == "" {
		return fmt.Errorf("no data to draw")
	}
	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Name)
	fmt.Print(out)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range samples[0].Positions {
		header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range samples {
		row := []string{strconv.FormatFloat(s.Time, 'f', 6, 64)}
		for _, p := range s.Positions {
			row = append(row,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
				strconv.FormatFloat(p.Z, 'f', 6, 64),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, samples)
}

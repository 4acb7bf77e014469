// Command mldetect detects the melting layer in a polar volume snapshot and
// writes the extracted boundary edges as CSV, optionally with gridded
// Cartesian height surfaces.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/tkarjala/radproc/internal/gridding"
	"github.com/tkarjala/radproc/internal/log"
	"github.com/tkarjala/radproc/internal/pipeline"
	"github.com/tkarjala/radproc/internal/polar"
	"github.com/tkarjala/radproc/internal/snapshot"
)

func main() {
	var (
		input    = flag.String("input", "", "Path to the polar volume snapshot")
		output   = flag.String("output", "edges.csv", "Path for the edge CSV")
		sweep    = flag.Int("sweep", -1, "Restrict output to one sweep index (-1 for all)")
		grid     = flag.Bool("grid", false, "Also interpolate edges onto a Cartesian grid")
		gridStep = flag.Float64("grid-step", 2, "Grid resolution in km")
		gridOut  = flag.String("grid-output", "surface.csv", "Path for the surface CSV when -grid is set")
		debug    = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *input == "" {
		log.Errorf("No input snapshot given. Run with -h for help.")
		os.Exit(1)
	}

	vol, err := snapshot.Read(*input)
	if err != nil {
		log.Errorf("Failed to read volume: %v", err)
		os.Exit(1)
	}
	log.Infof("Read volume %s: %d sweeps", vol.ID, len(vol.Sweeps))

	cfg := pipeline.DefaultConfig()
	if *grid {
		gc := gridding.DefaultConfig()
		gc.StepKm = *gridStep
		cfg.Grid = &gc
	}

	detector := pipeline.New(cfg, log.GetSugaredLogger())
	result, err := detector.Run(vol)
	if err != nil {
		log.Errorf("Detection failed: %v", err)
		os.Exit(1)
	}

	if *sweep >= 0 {
		if *sweep >= len(result.Sweeps) {
			log.Errorf("Volume has no sweep %d (%d sweeps)", *sweep, len(result.Sweeps))
			os.Exit(1)
		}
		result.Sweeps = result.Sweeps[*sweep : *sweep+1]
	}

	if err := writeEdges(*output, vol, result); err != nil {
		log.Errorf("Failed to write edges: %v", err)
		os.Exit(1)
	}
	log.Infof("Wrote edges to %s", *output)

	if *grid {
		if err := writeSurfaces(*gridOut, result); err != nil {
			log.Errorf("Failed to write surfaces: %v", err)
			os.Exit(1)
		}
		log.Infof("Wrote surfaces to %s", *gridOut)
	}
}

func writeEdges(path string, vol *polar.Volume, result *pipeline.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"sweep", "ray", "azimuth_deg", "bottom_gate", "bottom_alt_m", "top_gate", "top_alt_m"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, se := range result.Sweeps {
		sweep := vol.Sweeps[se.Sweep]
		for r := 0; r < sweep.NumRays(); r++ {
			record := []string{
				strconv.Itoa(se.Sweep),
				strconv.Itoa(r),
				fmt.Sprintf("%.1f", sweep.Azimuths[r]),
				fmtGate(se.Bottom.Gate[r]),
				fmtAlt(se.Bottom.Alt[r]),
				fmtGate(se.Top.Gate[r]),
				fmtAlt(se.Top.Alt[r]),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSurfaces(path string, result *pipeline.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"edge", "sweep", "x_km", "y_km", "height_m"}); err != nil {
		return err
	}
	for _, se := range result.Sweeps {
		if err := writeSurface(writer, "bottom", se.Sweep, se.BottomSurface); err != nil {
			return err
		}
		if err := writeSurface(writer, "top", se.Sweep, se.TopSurface); err != nil {
			return err
		}
	}
	return nil
}

func writeSurface(writer *csv.Writer, edge string, sweep int, s *gridding.Surface) error {
	if s == nil {
		return nil
	}
	for yi, y := range s.Y {
		for xi, x := range s.X {
			record := []string{
				edge,
				strconv.Itoa(sweep),
				fmt.Sprintf("%.1f", x),
				fmt.Sprintf("%.1f", y),
				fmt.Sprintf("%.1f", s.Z[yi][xi]),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func fmtGate(g float64) string {
	if math.IsNaN(g) {
		return ""
	}
	return strconv.Itoa(int(g))
}

func fmtAlt(a float64) string {
	if math.IsNaN(a) {
		return ""
	}
	return fmt.Sprintf("%.1f", a)
}

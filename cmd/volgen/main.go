// Command volgen generates a synthetic polar volume snapshot with a
// designed melting layer band, for development and testing without real
// scan files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tkarjala/radproc/internal/log"
	"github.com/tkarjala/radproc/internal/snapshot"
	"github.com/tkarjala/radproc/internal/synth"
)

func main() {
	p := synth.DefaultParams()
	var (
		output  = flag.String("output", "volume.msgpack", "Path for the generated snapshot")
		sweeps  = flag.Int("sweeps", p.Sweeps, "Number of sweeps")
		rays    = flag.Int("rays", p.Rays, "Rays per sweep")
		gates   = flag.Int("gates", p.Gates, "Gates per ray")
		bandBot = flag.Float64("band-bottom", p.BandBottomM, "Melting band bottom altitude in m")
		bandTop = flag.Float64("band-top", p.BandTopM, "Melting band top altitude in m")
		seed    = flag.Int64("seed", p.Seed, "Noise seed")
		clutter = flag.Bool("clutter", p.Clutter, "Add near-ground clutter spikes")
		debug   = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	p.Sweeps = *sweeps
	p.Rays = *rays
	p.Gates = *gates
	p.BandBottomM = *bandBot
	p.BandTopM = *bandTop
	p.Seed = *seed
	p.Clutter = *clutter

	vol := synth.Volume(p)
	if err := snapshot.Write(*output, vol); err != nil {
		log.Errorf("Failed to write snapshot: %v", err)
		os.Exit(1)
	}
	log.Infof("Wrote volume %s (%d sweeps, band %.0f-%.0f m) to %s",
		vol.ID, len(vol.Sweeps), p.BandBottomM, p.BandTopM, *output)
}

// Package snapshot reads and writes msgpack polar volume snapshots, the
// interchange form the external ODIM-HDF5 reader delivers volumes in. Sweeps
// are keyed dataset1..datasetN following the vendor convention.
//
// Some vendor files carry datasets that cannot be assembled into the volume
// (historically dataset7 through dataset9). Read retries once with those
// excluded before giving up.
package snapshot

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
)

// ReadError reports a snapshot that could not be assembled into a volume
// even after the dataset-exclusion retry.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read volume snapshot %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Snapshot is the on-disk form of a polar volume.
type Snapshot struct {
	ID       string              `msgpack:"id"`
	SiteLat  float64             `msgpack:"site_lat"`
	SiteLon  float64             `msgpack:"site_lon"`
	SiteAlt  float64             `msgpack:"site_alt"`
	Datasets map[string]*Dataset `msgpack:"datasets"`
}

// Dataset is one sweep.
type Dataset struct {
	Number       int                    `msgpack:"number"`
	ElevationDeg float64                `msgpack:"elevation_deg"`
	Azimuths     []float64              `msgpack:"azimuths"`
	Ranges       []float64              `msgpack:"ranges"`
	Moments      map[string]*MomentData `msgpack:"moments"`
}

// MomentData is one moment of one sweep, row-major by ray.
type MomentData struct {
	Units string    `msgpack:"units"`
	Data  []float64 `msgpack:"data"`
	Mask  []bool    `msgpack:"mask"`
}

// defaultExclude matches the reader collaborator's default behavior.
var defaultExclude = []string{"dataset13"}

// quirkExclude is the known-bad dataset range some vendor files carry.
var quirkExclude = []string{"dataset7", "dataset8", "dataset9"}

// Read decodes a snapshot into a volume, first excluding the default
// dataset list, then retrying with the vendor quirk exclusion. Both
// failures wrap into a ReadError.
func Read(path string) (*polar.Volume, error) {
	vol, err := readExcluding(path, defaultExclude)
	if err == nil {
		return vol, nil
	}
	vol, retryErr := readExcluding(path, quirkExclude)
	if retryErr == nil {
		return vol, nil
	}
	return nil, &ReadError{Path: path, Err: retryErr}
}

func readExcluding(path string, exclude []string) (*polar.Volume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return assemble(&snap, exclude)
}

func assemble(snap *Snapshot, exclude []string) (*polar.Volume, error) {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}
	keys := make([]string, 0, len(snap.Datasets))
	for k := range snap.Datasets {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("snapshot has no usable datasets")
	}
	sort.Slice(keys, func(i, j int) bool {
		return snap.Datasets[keys[i]].Number < snap.Datasets[keys[j]].Number
	})

	sweeps := make([]*polar.Sweep, 0, len(keys))
	for _, k := range keys {
		ds := snap.Datasets[k]
		if err := validateDataset(k, ds); err != nil {
			return nil, err
		}
		sweeps = append(sweeps, &polar.Sweep{
			Number:       ds.Number,
			ElevationDeg: ds.ElevationDeg,
			Azimuths:     ds.Azimuths,
			Ranges:       ds.Ranges,
		})
	}
	vol := polar.NewVolume(polar.Site{Lat: snap.SiteLat, Lon: snap.SiteLon, AltM: snap.SiteAlt}, sweeps)
	if id, err := uuid.Parse(snap.ID); err == nil {
		vol.ID = id
	}

	// Collect moment names across datasets; every dataset must carry every
	// moment it is to contribute to.
	names := map[string]bool{}
	for _, k := range keys {
		for name := range snap.Datasets[k].Moments {
			names[name] = true
		}
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	for _, name := range ordered {
		base, isFiltered := strings.CutSuffix(strings.ToUpper(name), "_FILTERED")
		t, err := moment.ParseType(base)
		if err != nil {
			return nil, fmt.Errorf("dataset moment %q: %w", name, err)
		}
		id := polar.Raw(t)
		if isFiltered {
			id = polar.Filtered(t)
		}
		field := &polar.Field{Sweeps: make([]*polar.Grid2, len(keys))}
		for si, k := range keys {
			ds := snap.Datasets[k]
			md, ok := ds.Moments[name]
			if !ok {
				return nil, fmt.Errorf("%s is missing moment %s", k, name)
			}
			rays, gates := len(ds.Azimuths), len(ds.Ranges)
			if len(md.Data) != rays*gates || len(md.Mask) != rays*gates {
				return nil, fmt.Errorf("%s moment %s has %d cells, geometry is %dx%d",
					k, name, len(md.Data), rays, gates)
			}
			field.Units = md.Units
			field.Sweeps[si] = &polar.Grid2{
				Rays:  rays,
				Gates: gates,
				Data:  append([]float64(nil), md.Data...),
				Mask:  append([]bool(nil), md.Mask...),
			}
		}
		if err := vol.AddField(id, field, true); err != nil {
			return nil, err
		}
	}
	return vol, nil
}

func validateDataset(key string, ds *Dataset) error {
	if ds == nil {
		return fmt.Errorf("%s is empty", key)
	}
	if len(ds.Azimuths) == 0 || len(ds.Ranges) == 0 {
		return fmt.Errorf("%s has no geometry (%d rays, %d gates)", key, len(ds.Azimuths), len(ds.Ranges))
	}
	if len(ds.Moments) == 0 {
		return fmt.Errorf("%s carries no moments", key)
	}
	return nil
}

// Write encodes a volume as a snapshot file.
func Write(path string, vol *polar.Volume) error {
	snap := &Snapshot{
		ID:       vol.ID.String(),
		SiteLat:  vol.Site.Lat,
		SiteLon:  vol.Site.Lon,
		SiteAlt:  vol.Site.AltM,
		Datasets: make(map[string]*Dataset, len(vol.Sweeps)),
	}
	for si, s := range vol.Sweeps {
		ds := &Dataset{
			Number:       s.Number,
			ElevationDeg: s.ElevationDeg,
			Azimuths:     s.Azimuths,
			Ranges:       s.Ranges,
			Moments:      make(map[string]*MomentData),
		}
		for _, id := range vol.FieldIDs() {
			f, err := vol.Field(id)
			if err != nil {
				return err
			}
			g := f.Sweeps[si]
			ds.Moments[id.String()] = &MomentData{
				Units: f.Units,
				Data:  g.Data,
				Mask:  g.Mask,
			}
		}
		snap.Datasets[fmt.Sprintf("dataset%d", si+1)] = ds
	}
	raw, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode volume snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write volume snapshot: %w", err)
	}
	return nil
}

package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
	"github.com/tkarjala/radproc/internal/synth"
)

func TestRoundTrip(t *testing.T) {
	vol := synth.Volume(synth.Params{
		Sweeps:      2,
		Rays:        104, // covers the blind sector so masks round-trip
		Gates:       10,
		GateStepM:   120,
		BandBottomM: 300,
		BandTopM:    600,
		SiteAltM:    100,
		Seed:        3,
	})
	path := filepath.Join(t.TempDir(), "vol.msgpack")
	require.NoError(t, Write(path, vol))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, vol.ID, got.ID)
	assert.Equal(t, vol.Site, got.Site)
	require.Len(t, got.Sweeps, 2)
	assert.Equal(t, vol.Sweeps[1].ElevationDeg, got.Sweeps[1].ElevationDeg)
	assert.Equal(t, vol.FieldIDs(), got.FieldIDs())

	want, err := vol.SweepField(0, polar.Raw(moment.ZH))
	require.NoError(t, err)
	read, err := got.SweepField(0, polar.Raw(moment.ZH))
	require.NoError(t, err)
	assert.Equal(t, want.At(5, 5), read.At(5, 5))
	assert.True(t, read.IsMasked(101, 2), "blind sector mask survives")

	f, err := got.Field(polar.Raw(moment.ZH))
	require.NoError(t, err)
	assert.Equal(t, "dBZ", f.Units)
}

func goodDataset(number, rays, gates int) *Dataset {
	az := make([]float64, rays)
	for i := range az {
		az[i] = float64(i) * 360 / float64(rays)
	}
	rg := make([]float64, gates)
	for i := range rg {
		rg[i] = float64(i+1) * 500
	}
	data := make([]float64, rays*gates)
	for i := range data {
		data[i] = 10
	}
	return &Dataset{
		Number:       number,
		ElevationDeg: 0.7,
		Azimuths:     az,
		Ranges:       rg,
		Moments: map[string]*MomentData{
			"ZH": {Units: "dBZ", Data: data, Mask: make([]bool, rays*gates)},
		},
	}
}

func writeSnapshot(t *testing.T, snap *Snapshot) string {
	t.Helper()
	raw, err := msgpack.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snap.msgpack")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestReadRetriesVendorQuirk(t *testing.T) {
	// dataset8 has no geometry: the first pass fails, the quirk exclusion
	// drops dataset7..9 and the retry succeeds with the remaining sweeps.
	path := writeSnapshot(t, &Snapshot{
		ID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Datasets: map[string]*Dataset{
			"dataset1": goodDataset(0, 4, 6),
			"dataset2": goodDataset(1, 4, 6),
			"dataset8": {Number: 7},
		},
	})
	vol, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, vol.Sweeps, 2)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", vol.ID.String())
}

func TestReadExcludesDataset13ByDefault(t *testing.T) {
	path := writeSnapshot(t, &Snapshot{
		Datasets: map[string]*Dataset{
			"dataset1":  goodDataset(0, 4, 6),
			"dataset13": {Number: 12},
		},
	})
	vol, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, vol.Sweeps, 1)
}

func TestReadFailsOutsideExclusions(t *testing.T) {
	// dataset2 is broken and no exclusion list covers it.
	path := writeSnapshot(t, &Snapshot{
		Datasets: map[string]*Dataset{
			"dataset1": goodDataset(0, 4, 6),
			"dataset2": {Number: 1},
		},
	})
	_, err := Read(path)
	require.Error(t, err)
	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, path, readErr.Path)
}

func TestReadRejectsUnknownMoment(t *testing.T) {
	ds := goodDataset(0, 4, 6)
	ds.Moments["BOGUS"] = ds.Moments["ZH"]
	path := writeSnapshot(t, &Snapshot{Datasets: map[string]*Dataset{"dataset1": ds}})
	_, err := Read(path)
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.msgpack"))
	require.Error(t, err)
	var readErr *ReadError
	assert.True(t, errors.As(err, &readErr))
}

func TestReadGeometryMismatch(t *testing.T) {
	ds := goodDataset(0, 4, 6)
	ds.Moments["ZH"].Data = ds.Moments["ZH"].Data[:10]
	path := writeSnapshot(t, &Snapshot{Datasets: map[string]*Dataset{"dataset1": ds}})
	_, err := Read(path)
	assert.Error(t, err)
}

func TestReadFilteredVariantNaming(t *testing.T) {
	ds := goodDataset(0, 4, 6)
	ds.Moments["ZH_filtered"] = ds.Moments["ZH"]
	path := writeSnapshot(t, &Snapshot{Datasets: map[string]*Dataset{"dataset1": ds}})
	vol, err := Read(path)
	require.NoError(t, err)
	assert.True(t, vol.HasField(polar.Filtered(moment.ZH)))
}

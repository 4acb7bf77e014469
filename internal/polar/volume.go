package polar

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tkarjala/radproc/internal/moment"
)

// FieldID keys the volume field registry: a moment type plus a raw/filtered
// variant flag.
type FieldID struct {
	Moment   moment.Type
	Filtered bool
}

func (id FieldID) String() string {
	if id.Filtered {
		return id.Moment.String() + "_filtered"
	}
	return id.Moment.String()
}

// WithFiltered returns the filtered variant of the identifier.
func (id FieldID) WithFiltered() FieldID {
	return FieldID{Moment: id.Moment, Filtered: true}
}

// Raw is shorthand for the raw variant of a moment.
func Raw(t moment.Type) FieldID { return FieldID{Moment: t} }

// Filtered is shorthand for the filtered variant of a moment.
func Filtered(t moment.Type) FieldID { return FieldID{Moment: t, Filtered: true} }

// Field is one named field over the whole volume: one grid per sweep plus
// descriptive metadata.
type Field struct {
	Units    string
	LongName string
	Sweeps   []*Grid2
}

// Clone deep-copies the field.
func (f *Field) Clone() *Field {
	out := &Field{Units: f.Units, LongName: f.LongName}
	out.Sweeps = make([]*Grid2, len(f.Sweeps))
	for i, g := range f.Sweeps {
		out.Sweeps[i] = g.Clone()
	}
	return out
}

// Site is the radar location.
type Site struct {
	Lat, Lon, AltM float64
}

// Volume is one polar volume scan: ordered sweeps and a typed field
// registry. AddField copies grids in and SweepField copies grids out; Field
// returns the stored field itself and callers must treat it as read-only.
type Volume struct {
	ID     uuid.UUID
	Site   Site
	Sweeps []*Sweep

	fields map[FieldID]*Field
}

// NewVolume builds an empty volume over the given sweeps, ordered by sweep
// number.
func NewVolume(site Site, sweeps []*Sweep) *Volume {
	ordered := append([]*Sweep(nil), sweeps...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })
	return &Volume{
		ID:     uuid.New(),
		Site:   site,
		Sweeps: ordered,
		fields: make(map[FieldID]*Field),
	}
}

// FieldIDs lists the registered fields in deterministic order.
func (v *Volume) FieldIDs() []FieldID {
	ids := make([]FieldID, 0, len(v.fields))
	for id := range v.fields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// HasField reports whether id is registered.
func (v *Volume) HasField(id FieldID) bool {
	_, ok := v.fields[id]
	return ok
}

// Field returns the stored field. The caller must not mutate it; use
// SweepField for a grid it may write to.
func (v *Volume) Field(id FieldID) (*Field, error) {
	f, ok := v.fields[id]
	if !ok {
		return nil, fmt.Errorf("volume has no field %s", id)
	}
	return f, nil
}

// SweepField returns a copy of one sweep grid of the named field.
func (v *Volume) SweepField(sweep int, id FieldID) (*Grid2, error) {
	f, err := v.Field(id)
	if err != nil {
		return nil, err
	}
	if sweep < 0 || sweep >= len(f.Sweeps) {
		return nil, fmt.Errorf("field %s has no sweep %d", id, sweep)
	}
	return f.Sweeps[sweep].Clone(), nil
}

// AddField registers a field under id, copying the grids in.
func (v *Volume) AddField(id FieldID, f *Field, replaceExisting bool) error {
	if _, ok := v.fields[id]; ok && !replaceExisting {
		return fmt.Errorf("field %s already exists", id)
	}
	if len(f.Sweeps) != len(v.Sweeps) {
		return fmt.Errorf("field %s has %d sweeps, volume has %d", id, len(f.Sweeps), len(v.Sweeps))
	}
	for i, g := range f.Sweeps {
		if g.Rays != v.Sweeps[i].NumRays() || g.Gates != v.Sweeps[i].NumGates() {
			return fmt.Errorf("field %s sweep %d is %dx%d, sweep geometry is %dx%d",
				id, i, g.Rays, g.Gates, v.Sweeps[i].NumRays(), v.Sweeps[i].NumGates())
		}
	}
	v.fields[id] = f.Clone()
	return nil
}

// AddFieldLike registers data under id, taking units and metadata from the
// existing field.
func (v *Volume) AddFieldLike(existing, id FieldID, sweeps []*Grid2, replaceExisting bool) error {
	src, err := v.Field(existing)
	if err != nil {
		return err
	}
	return v.AddField(id, &Field{Units: src.Units, LongName: src.LongName, Sweeps: sweeps}, replaceExisting)
}

// EnsureFiltered creates the filtered variant of t as a copy of the raw
// field when absent. Returns the filtered identifier.
func (v *Volume) EnsureFiltered(t moment.Type) (FieldID, error) {
	id := Filtered(t)
	if v.HasField(id) {
		return id, nil
	}
	raw, err := v.Field(Raw(t))
	if err != nil {
		return id, fmt.Errorf("cannot create filtered copy: %w", err)
	}
	v.fields[id] = raw.Clone()
	return id, nil
}

// Clone deep-copies the volume including its field registry. The clone gets
// the same ID; it represents the same scan.
func (v *Volume) Clone() *Volume {
	out := &Volume{ID: v.ID, Site: v.Site, fields: make(map[FieldID]*Field, len(v.fields))}
	out.Sweeps = make([]*Sweep, len(v.Sweeps))
	for i, s := range v.Sweeps {
		cp := *s
		cp.Azimuths = append([]float64(nil), s.Azimuths...)
		cp.Ranges = append([]float64(nil), s.Ranges...)
		out.Sweeps[i] = &cp
	}
	for id, f := range v.fields {
		out.fields[id] = f.Clone()
	}
	return out
}

package moment

// ScaleLimits clip a raw moment to a physical interval before it is mapped
// onto the unit interval.
type ScaleLimits struct {
	Min, Max float64
}

// Window is a 2D filter window in range bins by ray count.
type Window struct {
	RangeBins, Rays int
}

// Config collects every per-moment lookup table in one explicit struct.
// Tables are fixed at startup; there is no runtime mutation.
type Config struct {
	// ScaleLimits maps raw physical values onto [0, 1].
	ScaleLimits map[Type]ScaleLimits
	// FillValues replace masked cells when a filter needs gap-free input.
	FillValues map[Type]float64
	// ClutterThresholds mark near-ground cells as clutter candidates.
	ClutterThresholds map[Type]float64
	// MedianWindows are the per-moment windows for non-met median filtering.
	MedianWindows map[Type]Window
}

// DefaultConfig returns the standard tables for C-band polarimetric volumes.
func DefaultConfig() Config {
	return Config{
		ScaleLimits: map[Type]ScaleLimits{
			ZH:  {Min: -10, Max: 30},
			ZDR: {Min: 0, Max: 3},
			KDP: {Min: 0, Max: 0.5},
		},
		FillValues: map[Type]float64{
			ZH:  -32,
			ZDR: 0,
			KDP: 0,
			RHO: 0,
			MLI: 0,
		},
		ClutterThresholds: map[Type]float64{
			ZDR: 3.5,
			KDP: 0.22,
		},
		MedianWindows: map[Type]Window{
			ZH:  {RangeBins: 7, Rays: 1},
			KDP: {RangeBins: 19, Rays: 1},
			ZDR: {RangeBins: 11, Rays: 1},
			RHO: {RangeBins: 25, Rays: 1},
		},
	}
}

// Limits returns the scaling limits for t.
func (c Config) Limits(t Type) (ScaleLimits, error) {
	l, ok := c.ScaleLimits[t]
	if !ok {
		return ScaleLimits{}, &ConfigError{Moment: t.String(), Table: "scaling limits"}
	}
	return l, nil
}

// Fill returns the gap fill value for t.
func (c Config) Fill(t Type) (float64, error) {
	f, ok := c.FillValues[t]
	if !ok {
		return 0, &ConfigError{Moment: t.String(), Table: "fill values"}
	}
	return f, nil
}

// ClutterThreshold returns the ground clutter threshold for t.
func (c Config) ClutterThreshold(t Type) (float64, error) {
	v, ok := c.ClutterThresholds[t]
	if !ok {
		return 0, &ConfigError{Moment: t.String(), Table: "clutter thresholds"}
	}
	return v, nil
}

// MedianWindow returns the non-met median filter window for t.
func (c Config) MedianWindow(t Type) (Window, error) {
	w, ok := c.MedianWindows[t]
	if !ok {
		return Window{}, &ConfigError{Moment: t.String(), Table: "median windows"}
	}
	return w, nil
}

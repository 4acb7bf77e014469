// Package moment defines the known radar moment types and the per-moment
// configuration tables (scaling limits, fill values, clutter thresholds,
// median windows) used throughout the processing chain.
package moment

import (
	"fmt"
	"strings"
)

// Type identifies a radar moment.
type Type int

const (
	// ZH is horizontal reflectivity (dBZ).
	ZH Type = iota
	// ZDR is differential reflectivity (dB).
	ZDR
	// KDP is specific differential phase (deg/km).
	KDP
	// RHO is the copolar correlation coefficient (dimensionless).
	RHO
	// MLI is the derived melting layer indicator.
	MLI
)

var typeNames = map[Type]string{
	ZH:  "ZH",
	ZDR: "ZDR",
	KDP: "KDP",
	RHO: "RHO",
	MLI: "MLI",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a moment name case-insensitively.
func ParseType(s string) (Type, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == u {
			return t, nil
		}
	}
	return 0, &ConfigError{Moment: s, Table: "moment types"}
}

// ConfigError reports a moment type that has no entry in a configuration
// table.
type ConfigError struct {
	Moment string
	Table  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no %s entry for moment %q", e.Table, e.Moment)
}

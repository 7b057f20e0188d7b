package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupportedPolarisation is returned when no registered frame matches the
// requested name(s).
var ErrUnsupportedPolarisation = errors.New("polarisation not supported")

type frameDef struct {
	name  string
	names []string
}

// frameRegistry is ordered; name-list resolution returns the first match.
var frameRegistry = []frameDef{
	{name: "circular", names: []string{"RR", "RL", "LR", "LL"}},
	{name: "circularnp", names: []string{"RR", "LL"}},
	{name: "linear", names: []string{"XX", "XY", "YX", "YY"}},
	{name: "linearnp", names: []string{"XX", "YY"}},
	{name: "stokesIQUV", names: []string{"I", "Q", "U", "V"}},
	{name: "stokesIV", names: []string{"I", "V"}},
	{name: "stokesIQ", names: []string{"I", "Q"}},
	{name: "stokesI", names: []string{"I"}},
}

// PolarisationFrame identifies one entry of the fixed frame registry. The zero
// value is not a valid frame.
type PolarisationFrame struct {
	name string
}

// Common frames.
var (
	Circular   = PolarisationFrame{name: "circular"}
	CircularNP = PolarisationFrame{name: "circularnp"}
	Linear     = PolarisationFrame{name: "linear"}
	LinearNP   = PolarisationFrame{name: "linearnp"}
	StokesIQUV = PolarisationFrame{name: "stokesIQUV"}
	StokesIV   = PolarisationFrame{name: "stokesIV"}
	StokesIQ   = PolarisationFrame{name: "stokesIQ"}
	StokesI    = PolarisationFrame{name: "stokesI"}
)

// NewPolarisationFrame returns the registered frame called name.
func NewPolarisationFrame(name string) (PolarisationFrame, error) {
	if lookupFrame(name) == nil {
		return PolarisationFrame{}, fmt.Errorf("%w: %q", ErrUnsupportedPolarisation, name)
	}
	return PolarisationFrame{name: name}, nil
}

// PolarisationFrameFromNames resolves names to a registered frame. names may
// be a registry key (string) or a list of component names ([]string) in any
// order. Any other type fails with ErrUnsupportedPolarisation.
func PolarisationFrameFromNames(names any) (PolarisationFrame, error) {
	switch v := names.(type) {
	case string:
		if lookupFrame(v) != nil {
			return PolarisationFrame{name: v}, nil
		}
	case []string:
		want := slices.Clone(v)
		slices.Sort(want)
		for _, def := range frameRegistry {
			have := slices.Clone(def.names)
			slices.Sort(have)
			if slices.Equal(want, have) {
				return PolarisationFrame{name: def.name}, nil
			}
		}
	}
	return PolarisationFrame{}, fmt.Errorf("%w: %v", ErrUnsupportedPolarisation, names)
}

// PolarisationFrameNames lists the registry keys in registry order.
func PolarisationFrameNames() []string {
	out := make([]string, 0, len(frameRegistry))
	for _, def := range frameRegistry {
		out = append(out, def.name)
	}
	return out
}

// String returns the registry key.
func (p PolarisationFrame) String() string { return p.name }

// Valid reports whether p refers to a registered frame.
func (p PolarisationFrame) Valid() bool { return lookupFrame(p.name) != nil }

// Names returns the ordered component names. The slice is a copy.
func (p PolarisationFrame) Names() []string {
	def := lookupFrame(p.name)
	if def == nil {
		return nil
	}
	return slices.Clone(def.names)
}

// NPol is the number of polarisation components.
func (p PolarisationFrame) NPol() int {
	def := lookupFrame(p.name)
	if def == nil {
		return 0
	}
	return len(def.names)
}

// IsStokes reports whether the frame holds Stokes parameters rather than
// correlation products.
func (p PolarisationFrame) IsStokes() bool {
	return strings.HasPrefix(p.name, "stokes")
}

func lookupFrame(name string) *frameDef {
	for i := range frameRegistry {
		if frameRegistry[i].name == name {
			return &frameRegistry[i]
		}
	}
	return nil
}

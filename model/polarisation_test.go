package model

import (
	"errors"
	"slices"
	"testing"
)

func TestPolarisationFrameFromNamesKey(t *testing.T) {
	for _, name := range PolarisationFrameNames() {
		got, err := PolarisationFrameFromNames(name)
		if err != nil {
			t.Fatalf("PolarisationFrameFromNames(%q) error: %v", name, err)
		}
		if got.String() != name {
			t.Fatalf("PolarisationFrameFromNames(%q) = %s, want %s", name, got, name)
		}
	}
}

func TestPolarisationFrameFromNamesOrderIndependent(t *testing.T) {
	cases := []struct {
		names []string
		want  PolarisationFrame
	}{
		{[]string{"YY", "XX", "YX", "XY"}, Linear},
		{[]string{"LL", "RR"}, CircularNP},
		{[]string{"RL", "LL", "RR", "LR"}, Circular},
		{[]string{"V", "U", "Q", "I"}, StokesIQUV},
		{[]string{"V", "I"}, StokesIV},
		{[]string{"I"}, StokesI},
		{[]string{"YY", "XX"}, LinearNP},
	}
	for _, tc := range cases {
		got, err := PolarisationFrameFromNames(tc.names)
		if err != nil {
			t.Fatalf("PolarisationFrameFromNames(%v) error: %v", tc.names, err)
		}
		if got != tc.want {
			t.Fatalf("PolarisationFrameFromNames(%v) = %s, want %s", tc.names, got, tc.want)
		}
	}
}

func TestPolarisationFrameFromNamesDoesNotMutateInput(t *testing.T) {
	in := []string{"YY", "XX"}
	if _, err := PolarisationFrameFromNames(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(in, []string{"YY", "XX"}) {
		t.Fatalf("input mutated to %v", in)
	}
}

func TestPolarisationFrameFromNamesUnsupported(t *testing.T) {
	for _, in := range []any{
		"stokesXYZ",
		"XX",
		[]string{"XX", "RR"},
		[]string{"I", "I"},
		[]string{},
		42,
		nil,
	} {
		if _, err := PolarisationFrameFromNames(in); !errors.Is(err, ErrUnsupportedPolarisation) {
			t.Fatalf("PolarisationFrameFromNames(%v) error = %v, want ErrUnsupportedPolarisation", in, err)
		}
	}
}

func TestPolarisationFrameNPolAndNames(t *testing.T) {
	if got := StokesIQUV.NPol(); got != 4 {
		t.Fatalf("StokesIQUV.NPol() = %d, want 4", got)
	}
	names := Linear.Names()
	if !slices.Equal(names, []string{"XX", "XY", "YX", "YY"}) {
		t.Fatalf("Linear.Names() = %v", names)
	}
	names[0] = "ZZ"
	if Linear.Names()[0] != "XX" {
		t.Fatalf("Names() returned a shared slice")
	}
	var zero PolarisationFrame
	if zero.Valid() || zero.NPol() != 0 || zero.Names() != nil {
		t.Fatalf("zero frame should be invalid")
	}
	if !StokesI.IsStokes() || Linear.IsStokes() {
		t.Fatalf("IsStokes mismatch")
	}
}

func TestRegistryComponentSetsUnique(t *testing.T) {
	seen := map[string]string{}
	for _, def := range frameRegistry {
		key := slices.Clone(def.names)
		slices.Sort(key)
		k := ""
		for _, n := range key {
			k += n + ","
		}
		if other, ok := seen[k]; ok {
			t.Fatalf("frames %s and %s share components %v", other, def.name, key)
		}
		seen[k] = def.name
	}
}

func TestNewPolarisationFrame(t *testing.T) {
	f, err := NewPolarisationFrame("stokesIQ")
	if err != nil || f != StokesIQ {
		t.Fatalf("NewPolarisationFrame(stokesIQ) = %v, %v", f, err)
	}
	if _, err := NewPolarisationFrame("bogus"); !errors.Is(err, ErrUnsupportedPolarisation) {
		t.Fatalf("NewPolarisationFrame(bogus) error = %v", err)
	}
}

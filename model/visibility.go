package model

// SkyCoord is a celestial position in degrees.
type SkyCoord struct {
	RADeg  float64 `json:"ra_deg"`
	DecDeg float64 `json:"dec_deg"`
}

// Visibility is the read-only view of a visibility dataset consumed by the
// template builder. Implementations must not be mutated by callers.
type Visibility interface {
	// PhaseCentre is the sky position visibility phases are referenced to.
	PhaseCentre() SkyCoord
	// Frequency returns per-channel frequencies in Hz.
	Frequency() []float64
	// ChannelBandwidth returns per-channel widths in Hz.
	ChannelBandwidth() []float64
	// UVW returns spatial-frequency coordinates in wavelengths.
	UVW() [][3]float64
	// PolarisationTag is the registry name of the native polarisation frame.
	PolarisationTag() string
}

// BlockVisibility is an in-memory visibility dataset. Only the fields used for
// image/metadata derivation are carried; sample values are not.
type BlockVisibility struct {
	Centre       SkyCoord     `json:"phasecentre"`
	Frequencies  []float64    `json:"frequency"`
	Bandwidths   []float64    `json:"channel_bandwidth"`
	UVWLambda    [][3]float64 `json:"uvw_lambda"`
	Polarisation string       `json:"polarisation_frame"`
}

var _ Visibility = (*BlockVisibility)(nil)

func (b *BlockVisibility) PhaseCentre() SkyCoord       { return b.Centre }
func (b *BlockVisibility) Frequency() []float64        { return b.Frequencies }
func (b *BlockVisibility) ChannelBandwidth() []float64 { return b.Bandwidths }
func (b *BlockVisibility) UVW() [][3]float64           { return b.UVWLambda }
func (b *BlockVisibility) PolarisationTag() string     { return b.Polarisation }

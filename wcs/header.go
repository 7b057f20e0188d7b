package wcs

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Header is a set of FITS keywords. Values are int, float64 or string.
type Header map[string]any

// Nth returns the indexed keyword name, e.g. Nth("CTYPE", 1) == "CTYPE1".
func Nth(key string, n int) string {
	return key + strconv.Itoa(n)
}

// Header renders w as FITS keywords for an image of the given array shape
// (channel, polarisation, y, x). NAXISn follows FITS order, so NAXIS1 is x.
func (w WCS) Header(shape [NAxis]int) Header {
	h := Header{
		"NAXIS":   NAxis,
		"WCSAXES": NAxis,
		"RADESYS": w.RADeSys,
		"EQUINOX": w.Equinox,
	}
	for i := 0; i < NAxis; i++ {
		k := i + 1
		h[Nth("NAXIS", k)] = shape[NAxis-1-i]
		h[Nth("CTYPE", k)] = w.CType[i]
		h[Nth("CRPIX", k)] = w.CRPix[i]
		h[Nth("CDELT", k)] = w.CDelt[i]
		h[Nth("CRVAL", k)] = w.CRVal[i]
		if w.CUnit[i] != "" {
			h[Nth("CUNIT", k)] = w.CUnit[i]
		}
	}
	return h
}

// keywordOrder is the card order used by Keys; unknown keywords follow in
// lexical order.
var keywordOrder = func() []string {
	order := []string{"NAXIS"}
	for k := 1; k <= NAxis; k++ {
		order = append(order, Nth("NAXIS", k))
	}
	order = append(order, "WCSAXES")
	for _, base := range []string{"CTYPE", "CRPIX", "CDELT", "CRVAL", "CUNIT"} {
		for k := 1; k <= NAxis; k++ {
			order = append(order, Nth(base, k))
		}
	}
	return append(order, "RADESYS", "EQUINOX")
}()

// Keys returns the keywords of h in FITS card order.
func (h Header) Keys() []string {
	seen := make(map[string]bool, len(h))
	keys := make([]string, 0, len(h))
	for _, k := range keywordOrder {
		if _, ok := h[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range h {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// Cards formats h as 80-column FITS header cards, without the END card.
func (h Header) Cards() []string {
	keys := h.Keys()
	cards := make([]string, 0, len(keys))
	for _, k := range keys {
		cards = append(cards, formatCard(k, h[k]))
	}
	return cards
}

// Struct converts h to a protobuf Struct for transport between pipeline
// stages.
func (h Header) Struct() (*structpb.Struct, error) {
	m := make(map[string]any, len(h))
	for k, v := range h {
		m[k] = v
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("header to struct: %w", err)
	}
	return s, nil
}

func formatCard(key string, value any) string {
	var v string
	switch x := value.(type) {
	case string:
		// Fixed-format strings are quoted and padded to at least 8 characters.
		s := strings.ReplaceAll(x, "'", "''")
		v = fmt.Sprintf("'%-8s'", s)
	case int:
		v = fmt.Sprintf("%20d", x)
	case float64:
		v = fmt.Sprintf("%20s", formatReal(x))
	default:
		v = fmt.Sprintf("%20v", x)
	}
	card := fmt.Sprintf("%-8s= %s", key, v)
	if len(card) > 80 {
		return card[:80]
	}
	return fmt.Sprintf("%-80s", card)
}

// formatReal renders x so a FITS reader parses it as a real, not an integer.
func formatReal(x float64) string {
	s := strings.ToUpper(strconv.FormatFloat(x, 'G', -1, 64))
	if !strings.ContainsAny(s, ".EN") {
		s += ".0"
	}
	return s
}

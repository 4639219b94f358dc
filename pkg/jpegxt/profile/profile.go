// Package profile enumerates the legal combinations of frame type and
// coding flags from spec §3/§6, the way the teacher's DICOM transfer
// syntax registry (pkg/dicos/transfer) enumerates legal
// codec+parameter combinations identified by a single UID. A requested
// configuration that isn't in this registry fails with NotInProfile
// (spec §7), the JPEG XT analogue of an unsupported DICOM transfer
// syntax.
package profile

import "fmt"

// FrameType is the coding model of a frame, from spec §3's Frame data
// model: "type ∈ {Baseline, Sequential, Progressive, Lossless, JPEG-LS}".
type FrameType int

const (
	Baseline FrameType = iota
	Sequential
	Progressive
	Lossless
	JPEGLS
)

func (t FrameType) String() string {
	switch t {
	case Baseline:
		return "baseline"
	case Sequential:
		return "sequential"
	case Progressive:
		return "progressive"
	case Lossless:
		return "lossless"
	case JPEGLS:
		return "jpeg-ls"
	default:
		return "unknown"
	}
}

// Flags are the "× {Huffman, Arithmetic, optional Residual, optional
// Pyramidal}" bit-flags from spec §3, plus OptimizeHuffman and
// ReversibleDCT from the §6 configuration surface.
type Flags uint8

const (
	Arithmetic Flags = 1 << iota
	Pyramidal
	ResidualCoding
	ReversibleDCT
	OptimizeHuffman
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

func (f Flags) String() string {
	if f == 0 {
		return "huffman"
	}
	s := ""
	add := func(bit Flags, name string) {
		if f.Has(bit) {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if !f.Has(Arithmetic) {
		s = "huffman"
	} else {
		s = "arithmetic"
	}
	add(Pyramidal, "pyramidal")
	add(ResidualCoding, "residual")
	add(ReversibleDCT, "reversible-dct")
	add(OptimizeHuffman, "optimize-huffman")
	return s
}

// Profile is one registered (FrameType, Flags) combination.
type Profile struct {
	Type  FrameType
	Flags Flags
	name  string
}

// Name is the human-readable profile name, analogous to
// transfer.Syntax.Name() in the teacher package.
func (p Profile) Name() string { return p.name }

// registry lists every combination this codec implements. Pyramidal is
// intentionally absent from every entry: per Design Note 9's first open
// question, this implementation restricts itself to non-hierarchical
// frames plus ResidualCoding (see DESIGN.md).
var registry = []Profile{
	{Type: Baseline, Flags: 0, name: "Baseline DCT, Huffman"},
	{Type: Baseline, Flags: OptimizeHuffman, name: "Baseline DCT, optimized Huffman"},
	{Type: Sequential, Flags: 0, name: "Extended Sequential DCT, Huffman"},
	{Type: Sequential, Flags: Arithmetic, name: "Extended Sequential DCT, arithmetic"},
	{Type: Sequential, Flags: OptimizeHuffman, name: "Extended Sequential DCT, optimized Huffman"},
	{Type: Progressive, Flags: 0, name: "Progressive DCT, Huffman"},
	{Type: Progressive, Flags: Arithmetic, name: "Progressive DCT, arithmetic"},
	{Type: Progressive, Flags: OptimizeHuffman, name: "Progressive DCT, optimized Huffman"},
	{Type: Lossless, Flags: 0, name: "Lossless, Huffman"},
	{Type: Lossless, Flags: Arithmetic, name: "Lossless, arithmetic"},
	{Type: Lossless, Flags: ReversibleDCT, name: "Lossless, reversible integer DCT"},
	{Type: JPEGLS, Flags: 0, name: "JPEG-LS"},
	// ResidualCoding layers a second complete pipeline atop any base
	// frame type (spec §4.7); it is registered against the three DCT
	// base types (Baseline, Sequential, Progressive), not Lossless or
	// JPEG-LS.
	{Type: Baseline, Flags: ResidualCoding, name: "Baseline DCT + residual (lossless XT profile C)"},
	{Type: Sequential, Flags: ResidualCoding, name: "Extended Sequential DCT + residual"},
	{Type: Progressive, Flags: ResidualCoding, name: "Progressive DCT + residual"},
	{Type: Sequential, Flags: ResidualCoding | Arithmetic, name: "Extended Sequential DCT + residual, arithmetic"},
}

// Lookup finds the registered profile for (t, f), or reports ok=false if
// the combination is not implemented (NotInProfile, spec §7).
func Lookup(t FrameType, f Flags) (Profile, bool) {
	for _, p := range registry {
		if p.Type == t && p.Flags == f {
			return p, true
		}
	}
	return Profile{}, false
}

// MustLookup is a convenience for call sites that have already validated
// the combination and just want its display name.
func MustLookup(t FrameType, f Flags) Profile {
	p, ok := Lookup(t, f)
	if !ok {
		panic(fmt.Sprintf("profile: no registered profile for %s/%s", t, f))
	}
	return p
}

// All returns every registered profile, used by `jpegxtctl info` and by
// tests enumerating the supported configuration space.
func All() []Profile {
	out := make([]Profile, len(registry))
	copy(out, registry)
	return out
}

// Package jpegxt is the public facade over the component packages that
// implement spec §4 (C1-C9): it resolves a tag-item configuration list
// into a validated Config, and drives a full SOI..EOI codestream for the
// baseline/sequential Huffman profile end to end. Progressive,
// arithmetic, lossless, JPEG-LS, residual, and hierarchical coding are
// implemented in their own component packages (scan, ls, image) with
// package-level tests; this facade demonstrates the commonly used path
// per spec §2's control-flow description: "the driver (C7) obtains the
// next frame from C8... persisting entropy output through C2 into C1."
package jpegxt

import (
	"io"
	"log/slog"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/color"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/dct"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/frame"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/image"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/marker"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/profile"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/tags"
	"github.com/jpfielding/jpegxt/pkg/util"
)

// Config is the resolved, validated runtime configuration built once
// from a tag-item list, per spec Design Note 9 and SPEC_FULL.md's
// Configuration section.
type Config struct {
	Quality         int
	FrameType       profile.FrameType
	Flags           profile.Flags
	RestartInterval int
	ColorTransform  color.Mode
	HiddenDCTBits   int
	Subsampling     [3][2]int // per-component (H,V), defaults to 4:4:4 if unset
}

// defaultConfig matches the profile registry's simplest entry: Baseline,
// Huffman, quality 75, YCbCr, 4:4:4.
func defaultConfig() Config {
	return Config{
		Quality:        75,
		FrameType:      profile.Baseline,
		ColorTransform: color.ModeYCbCr,
		Subsampling:    [3][2]int{{1, 1}, {1, 1}, {1, 1}},
	}
}

// FromTagItems resolves an ordered tag-item list (as assembled by
// tags.Builder) into a Config, applying each recognized tag's effect per
// spec §6. Unrecognized tags are ignored, matching a forward-compatible
// discovery list.
func FromTagItems(items []tags.Item) *Config {
	cfg := defaultConfig()
	for _, it := range items {
		switch it.Tag {
		case tags.Quality:
			if v, ok := it.Value.(int); ok {
				cfg.Quality = v
			}
		case tags.FrameType:
			if v, ok := it.Value.(profile.FrameType); ok {
				cfg.FrameType = v
			}
		case tags.FrameFlags:
			if v, ok := it.Value.(profile.Flags); ok {
				cfg.Flags = v
			}
		case tags.RestartInterval:
			if v, ok := it.Value.(int); ok {
				cfg.RestartInterval = v
			}
		case tags.HiddenDCTBits:
			if v, ok := it.Value.(int); ok {
				cfg.HiddenDCTBits = v
			}
		case tags.ColorTransform:
			if v, ok := it.Value.(color.Mode); ok {
				cfg.ColorTransform = v
			}
		case tags.Subsampling:
			if v, ok := it.Value.([3][2]int); ok {
				cfg.Subsampling = v
			}
		}
	}
	return &cfg
}

// Validate checks the configuration against the profile registry, per
// spec §7: a legal-looking combination the registry doesn't carry fails
// with NotInProfile.
func (c *Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return Errf(ErrInvalidParameter, nil, "quality %d out of [1,100]", c.Quality)
	}
	if c.HiddenDCTBits < 0 || c.HiddenDCTBits > 4 {
		return Errf(ErrInvalidParameter, nil, "hidden_dct_bits %d out of [0,4]", c.HiddenDCTBits)
	}
	if _, ok := profile.Lookup(c.FrameType, c.Flags); !ok {
		return Errf(ErrNotInProfile, nil, "%s/%s is not a registered profile", c.FrameType, c.Flags)
	}
	return nil
}

// defaultLuma/defaultChroma are the Annex K.1 example quantization
// tables, scaled by Config.Quality per spec §4.3.
var defaultLuma = [64]uint16{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var defaultChroma = [64]uint16{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// defaultDCBits/defaultDCValues and defaultACBits/defaultACValues are
// T.81 Annex K.3's example Huffman luminance tables (BITS and HUFFVAL),
// the simplest legal baseline configuration when no optimization pass
// runs.
var defaultDCBits = [17]int{0, 0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
var defaultDCValues = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

var defaultACBits = [17]int{0, 0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 0x7d}
var defaultACValues = []byte{
	0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
	0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
	0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xa1, 0x08,
	0x23, 0x42, 0xb1, 0xc1, 0x15, 0x52, 0xd1, 0xf0,
	0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0a, 0x16,
	0x17, 0x18, 0x19, 0x1a, 0x25, 0x26, 0x27, 0x28,
	0x29, 0x2a, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
	0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
	0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
	0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
	0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
	0x7a, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
	0x8a, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
	0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7,
	0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6,
	0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3, 0xc4, 0xc5,
	0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2, 0xd3, 0xd4,
	0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xe1, 0xe2,
	0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea,
	0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
	0xf9, 0xfa,
}

// Plane is a single-component row-major sample grid, the Go-idiomatic
// stand-in for spec §6's bitmap callback when the caller already has the
// full image resident (matching the Non-goals restatement that the
// callback contracts stay specified only as interfaces — image.BitmapSource
// / image.BitmapSink — while cmd/jpegxtctl works directly with decoded
// planes).
type Plane struct {
	Width, Height int
	Samples       []int32
}

// EncodeGray writes a single-component baseline-profile codestream for
// one 8-bit gray plane, per spec §8 scenario E1/E3/E5's shape (the
// simplest concrete, fully testable path through C1-C8).
func EncodeGray(w io.Writer, p *Plane, cfg *Config) error {
	instance := util.NewInstanceID()
	slog.Debug("jpegxt encode starting", slog.String("instance", instance), slog.Int("width", p.Width), slog.Int("height", p.Height), slog.Int("quality", cfg.Quality))
	if err := cfg.Validate(); err != nil {
		return err
	}
	g, err := frame.NewGeometry(p.Width, p.Height, []frame.Component{{ID: 1, H: 1, V: 1, QuantSel: 0, DCSel: 0, ACSel: 0}})
	if err != nil {
		return err
	}

	scaled := dct.ScaleQuantTable(defaultLuma, cfg.Quality)
	var raw [64]uint16
	copy(raw[:], scaled[:])
	qt := dct.NewQuantTable(raw)

	dcTable, err := entropy.NewTable(defaultDCBits, defaultDCValues)
	if err != nil {
		return err
	}
	acTable, err := entropy.NewTable(defaultACBits, defaultACValues)
	if err != nil {
		return err
	}

	blocksWide := g.MCUsPerRow
	blocksHigh := g.MCURows
	blocks := make([][64]int32, blocksWide*blocksHigh)
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			var samples [64]int32
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					sx, sy := bx*8+x, by*8+y
					v := int32(0)
					if sx < p.Width && sy < p.Height {
						v = p.Samples[sy*p.Width+sx] - 128
					} else {
						v = -128
					}
					samples[y*8+x] = v
				}
			}
			blocks[by*blocksWide+bx] = dct.ForwardBlock(&samples, qt)
		}
	}

	bw := bitio.NewWriter(w)
	if err := marker.WriteStandalone(bw, marker.SOI); err != nil {
		return err
	}
	spec := &image.FrameSpec{
		SOFCode:         marker.SOF0,
		Geometry:        g,
		Quant:           [4]*dct.QuantTable{qt},
		DCTables:        [4]*entropy.Table{dcTable},
		ACTables:        [4]*entropy.Table{acTable},
		RestartInterval: cfg.RestartInterval,
	}
	if err := image.EncodeBaselineFrame(bw, spec, [][][64]int32{blocks}); err != nil {
		return err
	}
	if err := marker.WriteStandalone(bw, marker.EOI); err != nil {
		return err
	}
	return bw.Flush()
}

// DecodeGray reads a single-component baseline-profile codestream
// produced by EncodeGray (or any conforming encoder emitting one SOF0
// frame with a single grayscale component).
func DecodeGray(r io.Reader) (*Plane, error) {
	instance := util.NewInstanceID()
	slog.Debug("jpegxt decode starting", slog.String("instance", instance))
	br := bitio.NewReader(r)
	seg, err := marker.ReadOne(br)
	if err != nil {
		return nil, err
	}
	if seg.Code != marker.SOI {
		return nil, Errf(ErrNoJPEG, nil, "stream does not start with SOI")
	}

	var g *frame.Geometry
	var qt *dct.QuantTable
	var dcTable, acTable *entropy.Table
	restartInterval := 0

	for {
		seg, err := marker.ReadOne(br)
		if err != nil {
			return nil, err
		}
		switch seg.Code {
		case marker.DQT:
			defs, err := marker.ParseQuantTables(seg.Payload)
			if err != nil {
				return nil, err
			}
			qt = dct.NewQuantTable(defs[0].Values)
		case marker.DHT:
			defs, err := marker.ParseHuffmanTables(seg.Payload)
			if err != nil {
				return nil, err
			}
			for _, d := range defs {
				t, err := entropy.NewTable(d.Bits, d.Values)
				if err != nil {
					return nil, err
				}
				if d.Class == 0 {
					dcTable = t
				} else {
					acTable = t
				}
			}
		case marker.DRI:
			ri, err := marker.ParseRestartInterval(seg.Payload)
			if err != nil {
				return nil, err
			}
			restartInterval = int(ri)
		case marker.SOF0, marker.SOF1:
			fh, err := marker.ParseFrameHeader(seg.Code, seg.Payload)
			if err != nil {
				return nil, err
			}
			comps := make([]frame.Component, len(fh.Components))
			for i, c := range fh.Components {
				comps[i] = frame.Component{ID: c.ID, H: int(c.H), V: int(c.V), QuantSel: c.Tq}
			}
			g, err = frame.NewGeometry(int(fh.Width), int(fh.Height), comps)
			if err != nil {
				return nil, err
			}
		case marker.SOS:
			sh, err := marker.ParseScanHeader(seg.Payload)
			if err != nil {
				return nil, err
			}
			if g == nil || qt == nil || dcTable == nil || acTable == nil {
				return nil, Errf(ErrMalformedStream, nil, "SOS encountered before SOF/DQT/DHT")
			}
			for i := range g.Components {
				g.Components[i].DCSel = sh.Components[i].Td
				g.Components[i].ACSel = sh.Components[i].Ta
			}
			spec := &image.FrameSpec{
				Geometry:        g,
				Quant:           [4]*dct.QuantTable{qt},
				DCTables:        [4]*entropy.Table{dcTable},
				ACTables:        [4]*entropy.Table{acTable},
				RestartInterval: restartInterval,
			}
			blocks, err := image.DecodeBaselineFrame(br, spec, sh)
			if err != nil {
				return nil, err
			}
			return reconstructGray(g, blocks[0], qt), nil
		case marker.EOI:
			return nil, Errf(ErrMalformedStream, nil, "EOI encountered before SOS")
		}
	}
}

func reconstructGray(g *frame.Geometry, blocks [][64]int32, qt *dct.QuantTable) *Plane {
	p := &Plane{Width: g.Width, Height: g.Height, Samples: make([]int32, g.Width*g.Height)}
	for by := 0; by < g.MCURows; by++ {
		for bx := 0; bx < g.MCUsPerRow; bx++ {
			samples := dct.InverseBlock(&blocks[by*g.MCUsPerRow+bx], qt)
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					sx, sy := bx*8+x, by*8+y
					if sx < g.Width && sy < g.Height {
						p.Samples[sy*g.Width+sx] = samples[y*8+x] + 128
					}
				}
			}
		}
	}
	return p
}

package image

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/dct"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/frame"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/marker"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/scan"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// FrameSpec collects the per-frame configuration the C7 driver needs to
// sequence C8 markers and C5/C6 scan coding for one frame: geometry,
// the quantization/Huffman tables it references, and the restart
// interval. This is the frame-level analogue of marker.FrameHeader,
// with runtime table objects substituted for wire table-selector bytes.
type FrameSpec struct {
	SOFCode         marker.Code
	Geometry        *frame.Geometry
	Quant           [4]*dct.QuantTable // indexed by QuantSel
	DCTables        [4]*entropy.Table
	ACTables        [4]*entropy.Table
	RestartInterval int
}

// EncodeBaselineFrame writes one sequential-Huffman (baseline or
// extended) frame: SOF, DQT, DHT, SOS, and the entropy-coded scan data
// for a fully interleaved scan over every component, per spec §4.5/§4.8.
// blocks holds, per component, one quantized 8x8 block per MCU cell in
// raster order (already produced by C3's ForwardBlock over C4's
// color-converted, C6-sampled planes).
func EncodeBaselineFrame(w *bitio.Writer, spec *FrameSpec, blocks [][][64]int32) error {
	g := spec.Geometry
	fh := marker.FrameHeader{
		Code:      spec.SOFCode,
		Precision: 8,
		Height:    uint16(g.Height),
		Width:     uint16(g.Width),
	}
	for _, c := range g.Components {
		fh.Components = append(fh.Components, marker.FrameComponent{ID: c.ID, H: byte(c.H), V: byte(c.V), Tq: c.QuantSel})
	}
	if err := marker.WriteSegment(w, spec.SOFCode, fh.Encode()); err != nil {
		return err
	}

	var qdefs []marker.QuantTableDef
	seen := map[byte]bool{}
	for _, c := range g.Components {
		if seen[c.QuantSel] {
			continue
		}
		seen[c.QuantSel] = true
		qt := spec.Quant[c.QuantSel]
		qdefs = append(qdefs, marker.QuantTableDef{Selector: c.QuantSel, Values: qt.Raw})
	}
	if err := marker.WriteSegment(w, marker.DQT, marker.EncodeQuantTables(qdefs)); err != nil {
		return err
	}

	var hdefs []marker.HuffmanTableDef
	seenDC, seenAC := map[byte]bool{}, map[byte]bool{}
	for _, c := range g.Components {
		if !seenDC[c.DCSel] {
			seenDC[c.DCSel] = true
			hdefs = append(hdefs, huffDef(0, c.DCSel, spec.DCTables[c.DCSel]))
		}
		if !seenAC[c.ACSel] {
			seenAC[c.ACSel] = true
			hdefs = append(hdefs, huffDef(1, c.ACSel, spec.ACTables[c.ACSel]))
		}
	}
	if err := marker.WriteSegment(w, marker.DHT, marker.EncodeHuffmanTables(hdefs)); err != nil {
		return err
	}

	if spec.RestartInterval > 0 {
		if err := marker.WriteSegment(w, marker.DRI, marker.EncodeRestartInterval(uint16(spec.RestartInterval))); err != nil {
			return err
		}
	}

	sh := marker.ScanHeader{Se: 63}
	for _, c := range g.Components {
		sh.Components = append(sh.Components, marker.ScanComponent{Selector: c.ID, Td: c.DCSel, Ta: c.ACSel})
	}
	if err := marker.WriteSegment(w, marker.SOS, sh.Encode()); err != nil {
		return err
	}

	bw := entropy.NewBitWriter(w)
	pred := scan.NewPredictor(len(g.Components))
	mcusTotal := g.MCUsPerRow * g.MCURows
	drv := scan.NewDriver(mcusTotal, spec.RestartInterval)

	code := func(mcuIndex int) error {
		mx := mcuIndex % g.MCUsPerRow
		my := mcuIndex / g.MCUsPerRow
		for ci, c := range g.Components {
			for v := 0; v < c.V; v++ {
				for h := 0; h < c.H; h++ {
					bx := mx*c.H + h
					byi := my*c.V + v
					idx := byi*(g.MCUsPerRow*c.H) + bx
					if err := scan.EncodeSequentialBlock(bw, spec.DCTables[c.DCSel], spec.ACTables[c.ACSel], ci, &blocks[ci][idx], pred); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	for !drv.Done() {
		if err := drv.StepEncode(bw, w, code, pred, nil); err != nil {
			return err
		}
	}
	return bw.FlushScan()
}

// DecodeBaselineFrame is EncodeBaselineFrame's inverse: given an already
// parsed SOF/DQT/DHT/DRI (wired up into spec) and the already parsed SOS
// header sh, it decodes the scan's entropy data into blocks.
func DecodeBaselineFrame(r *bitio.Reader, spec *FrameSpec, sh marker.ScanHeader) ([][][64]int32, error) {
	g := spec.Geometry
	blocks := make([][][64]int32, len(g.Components))
	for i, c := range g.Components {
		wide := g.MCUsPerRow * c.H
		high := g.MCURows * c.V
		blocks[i] = make([][64]int32, wide*high)
	}

	br := entropy.NewBitReader(r)
	pred := scan.NewPredictor(len(g.Components))
	mcusTotal := g.MCUsPerRow * g.MCURows
	drv := scan.NewDriver(mcusTotal, spec.RestartInterval)

	selIndex := make(map[byte]int, len(sh.Components))
	for i, c := range g.Components {
		selIndex[c.ID] = i
	}

	code := func(mcuIndex int) error {
		mx := mcuIndex % g.MCUsPerRow
		my := mcuIndex / g.MCUsPerRow
		for _, sc := range sh.Components {
			ci, ok := selIndex[sc.Selector]
			if !ok {
				return xerrors.Errf(xerrors.MalformedStream, nil, "scan references undeclared component selector %d", sc.Selector)
			}
			c := g.Components[ci]
			for v := 0; v < c.V; v++ {
				for h := 0; h < c.H; h++ {
					bx := mx*c.H + h
					byi := my*c.V + v
					idx := byi*(g.MCUsPerRow*c.H) + bx
					if err := scan.DecodeSequentialBlock(br, spec.DCTables[c.DCSel], spec.ACTables[c.ACSel], ci, &blocks[ci][idx], pred); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	for !drv.Done() {
		if err := drv.StepDecode(br, r, code, pred, nil); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

func huffDef(class, selector byte, t *entropy.Table) marker.HuffmanTableDef {
	return marker.HuffmanTableDef{Class: class, Selector: selector, Bits: t.Bits, Values: t.Values}
}

// Package frame implements spec §4.6 (C6): component sampling factors,
// MCU geometry, the per-row block buffer shared across progressive
// scans, and the up/downsampling filters between component pixel grids
// and canvas space.
package frame

import "github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"

// Component describes one frame component's geometry and table
// selectors, per spec §3's Frame data model.
type Component struct {
	ID       byte
	H, V     int // sampling factors, 1..4
	QuantSel byte
	DCSel    byte
	ACSel    byte
}

// Geometry derives the MCU shape and per-component pixel grids from a
// frame's width, height, and component sampling factors, per spec §4.6.
type Geometry struct {
	Width, Height int
	Components    []Component
	HMax, VMax    int
	MCUWidth      int // Hmax*8
	MCUHeight     int // Vmax*8
	MCUsPerRow    int
	MCURows       int
}

// NewGeometry validates sampling factors and computes the MCU grid.
func NewGeometry(width, height int, comps []Component) (*Geometry, error) {
	if len(comps) == 0 || len(comps) > 256 {
		return nil, xerrors.Errf(xerrors.InvalidParameter, nil, "component count %d out of [1,256]", len(comps))
	}
	hmax, vmax := 1, 1
	for _, c := range comps {
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return nil, xerrors.Errf(xerrors.InvalidParameter, nil, "component %d sampling (%d,%d) out of [1,4]", c.ID, c.H, c.V)
		}
		if c.H > hmax {
			hmax = c.H
		}
		if c.V > vmax {
			vmax = c.V
		}
	}
	g := &Geometry{
		Width: width, Height: height, Components: comps,
		HMax: hmax, VMax: vmax,
		MCUWidth: hmax * 8, MCUHeight: vmax * 8,
	}
	g.MCUsPerRow = ceilDiv(width, g.MCUWidth)
	g.MCURows = ceilDiv(height, g.MCUHeight)
	return g, nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// ComponentGrid returns component i's pixel-grid width and height, per
// spec §4.6: "⌈W·Hᵢ/Hmax⌉ × ⌈H·Vᵢ/Vmax⌉".
func (g *Geometry) ComponentGrid(i int) (w, h int) {
	c := g.Components[i]
	return ceilDiv(g.Width*c.H, g.HMax), ceilDiv(g.Height*c.V, g.VMax)
}

// BlocksPerMCU returns component i's block count within one MCU (Hi*Vi).
func (g *Geometry) BlocksPerMCU(i int) int {
	c := g.Components[i]
	return c.H * c.V
}

// TotalBlocksPerMCU sums BlocksPerMCU across the given component
// selectors (a scan's interleave set), validating the ≤10 limit of
// spec §3: "≤ 10 for interleaved scans".
func (g *Geometry) TotalBlocksPerMCU(selectors []int) (int, error) {
	total := 0
	for _, i := range selectors {
		total += g.BlocksPerMCU(i)
	}
	if len(selectors) > 1 && total > 10 {
		return 0, xerrors.Errf(xerrors.InvalidParameter, nil, "interleaved MCU has %d blocks, max 10", total)
	}
	return total, nil
}

// BlockRow is one MCU row's worth of quantized coefficient blocks for a
// single component, laid out Hi*blocksWide wide.
type BlockRow struct {
	Blocks [][64]int32
	Wide   int // blocks across this component's slice of the MCU row
}

// BlockBuffer holds one MCU row per component, per spec §4.6: "A block
// buffer holds one MCU row of quantized coefficients per component to
// support progressive scans that re-visit the same coefficients and
// optimization pre-passes."
type BlockBuffer struct {
	rows []BlockRow
}

// NewBlockBuffer allocates a block buffer sized for one MCU row across
// all components of g.
func NewBlockBuffer(g *Geometry) *BlockBuffer {
	bb := &BlockBuffer{rows: make([]BlockRow, len(g.Components))}
	for i := range g.Components {
		wide := g.MCUsPerRow * g.Components[i].H
		bb.rows[i] = BlockRow{Blocks: make([][64]int32, wide), Wide: wide}
	}
	return bb
}

// Block returns a pointer to component i's block at column bx within the
// current MCU row, so scan passes can mutate coefficients in place
// across successive-approximation refinement scans.
func (bb *BlockBuffer) Block(i, bx int) *[64]int32 {
	return &bb.rows[i].Blocks[bx]
}

// Release drops the buffer's backing storage once the last scan of the
// frame has consumed it, per spec §4.6's row-by-row release contract.
func (bb *BlockBuffer) Release() {
	for i := range bb.rows {
		bb.rows[i].Blocks = nil
	}
}

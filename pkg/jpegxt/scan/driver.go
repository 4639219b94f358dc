package scan

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/marker"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// MCUCoder codes (or decodes) the blocks of a single MCU at MCU index
// mcuIndex; it is supplied by the scan-type-specific layer (sequential,
// progressive, arithmetic, or lossless) and called once per MCU by
// Driver, keeping the restart/row bookkeeping here centralized, per spec
// §4.5's shared state machine across all scan variants.
type MCUCoder func(mcuIndex int) error

// Driver runs the Idle→InRow→InMCU→FlushEob→AwaitRestart→Done state
// machine of spec §4.5 over one scan, suspending between MCUs as spec §5
// requires ("Suspension may occur between MCUs (not inside), at marker
// boundaries").
type Driver struct {
	state           State
	mcusTotal       int
	mcuIndex        int
	restartInterval int
	restartCounter  int
	sinceRestart    int
}

// NewDriver creates a driver for a scan with mcusTotal MCUs and the given
// restart interval (0 disables restarts).
func NewDriver(mcusTotal, restartInterval int) *Driver {
	return &Driver{state: StateIdle, mcusTotal: mcusTotal, restartInterval: restartInterval}
}

// State reports the driver's current state.
func (d *Driver) State() State { return d.state }

// Done reports whether the scan has consumed all its MCUs.
func (d *Driver) Done() bool { return d.state == StateDone }

// StepEncode advances the driver by exactly one MCU, calling code to
// produce that MCU's entropy-coded bits, then emitting a restart marker
// and resetting predictor/EOB-run state if the restart interval boundary
// was reached, per spec §4.5's restart handling.
func (d *Driver) StepEncode(bw *entropy.BitWriter, w *bitio.Writer, code MCUCoder, pred *Predictor, eob *EOBRun) error {
	if d.state == StateDone {
		return xerrors.Errf(xerrors.PhaseError, nil, "scan already done")
	}
	d.state = StateInMCU
	if err := code(d.mcuIndex); err != nil {
		return err
	}
	d.mcuIndex++
	d.sinceRestart++

	if d.restartInterval > 0 && d.sinceRestart == d.restartInterval && d.mcuIndex < d.mcusTotal {
		d.state = StateFlushEOB
		// Progressive AC callers must flush their own pending EOB run
		// (via FlushPendingEOBRun, which needs their AC table) inside
		// code() before returning, since a restart boundary closes out
		// any run in progress exactly like end of scan does.
		if err := bw.FlushScan(); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		d.state = StateAwaitRestart
		rstCode := marker.Code(0xD0 + d.restartCounter%8)
		if err := marker.WriteStandalone(w, rstCode); err != nil {
			return err
		}
		d.restartCounter++
		d.sinceRestart = 0
		if pred != nil {
			pred.Reset()
		}
		if eob != nil {
			eob.Remaining = 0
		}
	}

	if d.mcuIndex >= d.mcusTotal {
		d.state = StateDone
	} else {
		d.state = StateInRow
	}
	return nil
}

// StepDecode is StepEncode's decode-side counterpart: it calls code to
// consume one MCU's bits, then expects and consumes a restart marker at
// the interval boundary, failing with MalformedStream on a mismatch per
// spec §4.5 ("a mismatch signals stream corruption and triggers
// recovery").
func (d *Driver) StepDecode(br *entropy.BitReader, r *bitio.Reader, code MCUCoder, pred *Predictor, eob *EOBRun) error {
	if d.state == StateDone {
		return xerrors.Errf(xerrors.PhaseError, nil, "scan already done")
	}
	d.state = StateInMCU
	if err := code(d.mcuIndex); err != nil {
		return err
	}
	d.mcuIndex++
	d.sinceRestart++

	if d.restartInterval > 0 && d.sinceRestart == d.restartInterval && d.mcuIndex < d.mcusTotal {
		d.state = StateAwaitRestart
		br.AlignToByte()
		seg, err := marker.ReadOne(r)
		if err != nil {
			return err
		}
		want := marker.Code(0xD0 + d.restartCounter%8)
		if seg.Code != want {
			return xerrors.Errf(xerrors.MalformedStream, nil, "expected restart marker RST%d, got 0xFF%02X", d.restartCounter%8, byte(seg.Code))
		}
		d.restartCounter++
		d.sinceRestart = 0
		if pred != nil {
			pred.Reset()
		}
		if eob != nil {
			eob.Remaining = 0
		}
	}

	if d.mcuIndex >= d.mcusTotal {
		d.state = StateDone
	} else {
		d.state = StateInRow
	}
	return nil
}

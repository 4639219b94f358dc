package ls

// numContexts is the regular-mode context count (365, indices 0..364)
// plus the two run-interruption contexts (365 when Ra==Rb, 366
// otherwise), per ISO/IEC 14495-1 §A.6 — carried exactly from the
// teacher's ContextModel sizing.
const numContexts = 367

// jTable is ISO/IEC 14495-1 Table A.3's run-length index-to-bit-count
// mapping, copied from the teacher's ContextModel.J initializer.
var jTable = [32]int{
	0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// Model holds the per-component gradient-context statistics used by
// both the regular-mode Golomb coder and the run-interruption coder,
// adapted from the teacher's ContextModel to int32 sample width and
// this package's Quantize/Reconstruct near-lossless helpers.
type Model struct {
	maxVal int32
	near   int32
	reset  int32

	t1, t2, t3 int32

	a, b, c, n [numContexts]int32
	j          [32]int
	runIndex   int
}

// NewModel builds a context model for the given sample range, NEAR
// value, and reset threshold (ISO default: 64), deriving T1/T2/T3 per
// ISO/IEC 14495-1 §C.2.1's factor-scaled formula exactly as the teacher
// computes them.
func NewModel(maxVal, near, reset int32) *Model {
	m := &Model{maxVal: maxVal, near: near, reset: reset}
	factor := (minI32(maxVal, 4095) + 128) / 256

	m.t1 = clip32(factor*(3-2)+2+3*near, near+1, maxVal)
	m.t2 = clip32(factor*(7-3)+3+5*near, m.t1, maxVal)
	m.t3 = clip32(factor*(21-4)+4+7*near, m.t2, maxVal)

	for i := range m.a {
		m.a[i] = 4
		m.n[i] = 1
	}
	copy(m.j[:], jTable[:])
	return m
}

// QuantizeGradient maps a local gradient to one of the nine regions
// [-4,4] used to build the context index, per ISO/IEC 14495-1 §A.3.1.
func (m *Model) QuantizeGradient(d int32) int32 {
	switch {
	case d <= -m.t3:
		return -4
	case d <= -m.t2:
		return -3
	case d <= -m.t1:
		return -2
	case d < 0:
		return -1
	case d == 0:
		return 0
	case d < m.t1:
		return 1
	case d < m.t2:
		return 2
	case d < m.t3:
		return 3
	default:
		return 4
	}
}

// ContextIndex computes the regular-mode context (0..364) and its sign
// from the three local gradients, per ISO/IEC 14495-1 §A.3.2: the
// gradients are negated (and the result sign flipped) when the first
// nonzero one is negative, halving the table via symmetry.
func (m *Model) ContextIndex(d1, d2, d3 int32) (int, int32) {
	q1 := m.QuantizeGradient(d1)
	q2 := m.QuantizeGradient(d2)
	q3 := m.QuantizeGradient(d3)

	sign := int32(1)
	if q1 < 0 || (q1 == 0 && q2 < 0) || (q1 == 0 && q2 == 0 && q3 < 0) {
		q1, q2, q3 = -q1, -q2, -q3
		sign = -1
	}
	return int(q1*81 + q2*9 + q3), sign
}

// RunInterruptionContext returns 365 when the flat-run value equals the
// run-breaking neighbor, 366 otherwise (ISO/IEC 14495-1 §A.7.1).
func RunInterruptionContext(ra, rb int32) int {
	if ra == rb {
		return 365
	}
	return 366
}

// ComputeK derives the regular-mode Golomb parameter for context q, per
// ISO/IEC 14495-1 §A.5.1: the smallest k with N[q]<<k >= A[q].
func (m *Model) ComputeK(q int) int {
	n := m.n[q]
	if n == 0 {
		return 0
	}
	a := m.a[q]
	k := 0
	for (n << uint(k)) < a {
		k++
	}
	return k
}

// UpdateStats folds one coded error value into context q's running
// statistics and re-centers the bias correction, per ISO/IEC 14495-1
// §A.6.1, with the teacher's halving-at-reset behavior preserved.
func (m *Model) UpdateStats(q int, errVal int32) {
	m.b[q] += errVal
	m.a[q] += abs32(errVal)
	if m.n[q] == m.reset {
		m.a[q] >>= 1
		m.b[q] >>= 1
		m.n[q] >>= 1
	}
	m.n[q]++
	m.updateBias(q)
}

func (m *Model) updateBias(q int) {
	if m.b[q] <= -m.n[q] {
		m.b[q] += m.n[q]
		m.c[q]--
		if m.b[q] <= -m.n[q] {
			m.b[q] += m.n[q]
			m.c[q]--
		}
	} else if m.b[q] > 0 {
		m.b[q] -= m.n[q]
		m.c[q]++
		if m.b[q] > 0 {
			m.b[q] -= m.n[q]
			m.c[q]++
		}
	}
	m.c[q] = clip32(m.c[q], -128, 127)
}

// Bias returns context q's current prediction correction term C[q].
func (m *Model) Bias(q int) int32 { return m.c[q] }

// RunLength returns the run length 2^J[RunIndex] used by the run-mode
// coder, and its bit count for the interruption-length remainder.
func (m *Model) RunLength() (length int, bits int) {
	bits = m.j[m.runIndex]
	return 1 << uint(bits), bits
}

// AdvanceRun bumps RunIndex on a continued run (capped at 31).
func (m *Model) AdvanceRun() {
	if m.runIndex < 31 {
		m.runIndex++
	}
}

// RetreatRun decrements RunIndex at the end of a run (floored at 0).
func (m *Model) RetreatRun() {
	if m.runIndex > 0 {
		m.runIndex--
	}
}

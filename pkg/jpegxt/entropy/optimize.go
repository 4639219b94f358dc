package entropy

import "github.com/jpfielding/jpegxt/pkg/util"

// Counter accumulates symbol frequencies during the measurement
// (optimization) pass described in spec §4.2: "An optimization
// (measurement) pass runs the scan without producing output, counting
// symbol frequencies, and builds a length-limited (16 bits) Huffman
// table via the standard code-length construction with a reserved 17th
// level removed by symbol reassignment."
type Counter struct {
	freq [257]int // index 256 is a permanently-reserved phantom symbol
}

// NewCounter returns a Counter with the phantom symbol (JPEG Annex K.2's
// reserved code-space guard) pre-seeded at frequency 1, as the standard
// requires so the code-length construction always has somewhere to put
// the all-ones code of maximum length.
func NewCounter() *Counter {
	c := &Counter{}
	c.freq[256] = 1
	return c
}

// Count records one occurrence of symbol.
func (c *Counter) Count(symbol byte) { c.freq[symbol]++ }

// DebugID derives a stable id from the current frequency table, so a
// measurement-pass dump written during optimization can be named
// deterministically and matched back up in log output across an
// encode/decode session.
func (c *Counter) DebugID() string {
	return util.HashUUID(c.freq)
}

// Build runs the JPEG Annex K.2 code-length construction over the
// recorded frequencies and returns the resulting Table, with the
// phantom symbol's code removed from BITS/HUFFVAL before it is handed
// back (it never appears in the wire DHT segment).
func (c *Counter) Build() (*Table, error) {
	var freq [257]int
	copy(freq[:], c.freq[:])

	codeSize := make([]int, 257)
	others := make([]int, 257)
	for i := range others {
		others[i] = -1
	}

	for {
		// Find the symbol v1 with the smallest nonzero frequency,
		// preferring the largest code length on ties (K.2 step 1).
		v1 := leastFreq(freq[:], -1)
		if v1 < 0 {
			break
		}
		v2 := leastFreq(freq[:], v1)
		if v2 < 0 {
			break
		}
		freq[v1] += freq[v2]
		freq[v2] = 0
		codeSize[v1]++
		for others[v1] >= 0 {
			v1 = others[v1]
			codeSize[v1]++
		}
		others[v1] = v2
		for codeSize[v2] < 255 {
			codeSize[v2]++
			if others[v2] < 0 {
				break
			}
			v2 = others[v2]
		}
	}

	var bitsCount [33]int // codeSize can reach up to 255 in pathological cases; we only care <=32 before limiting
	for v := 0; v < 257; v++ {
		if codeSize[v] > 0 {
			n := codeSize[v]
			if n > 32 {
				n = 32
			}
			bitsCount[n]++
		}
	}

	limitTo16(bitsCount[:])

	// Remove the phantom symbol: it always sorts to the longest code,
	// which bitsCount[16] (after limiting) accounts for; drop one count
	// there since the phantom never becomes a real HUFFVAL entry.
	for n := 32; n >= 1; n-- {
		if bitsCount[n] > 0 {
			bitsCount[n]--
			break
		}
	}

	var bits [17]int
	copy(bits[:], bitsCount[:17])

	// Order real symbols by ascending code length, ties by symbol value,
	// matching HUFFVAL's canonical ordering.
	values := make([]byte, 0, 256)
	for n := 1; n <= 16; n++ {
		for v := 0; v < 256; v++ {
			if codeSize[v] == n || (n == 16 && codeSize[v] > 16) {
				values = append(values, byte(v))
			}
		}
	}
	if len(values) > 256 {
		values = values[:256]
	}

	return NewTable(bits, values)
}

// leastFreq returns the index of the smallest nonzero frequency other
// than exclude, preferring larger indices on ties (K.2's tie-break rule,
// which favors already-longer code lengths).
func leastFreq(freq []int, exclude int) int {
	best := -1
	for v := 256; v >= 0; v-- {
		if v == exclude || freq[v] == 0 {
			continue
		}
		if best < 0 || freq[v] < freq[best] {
			best = v
		}
	}
	return best
}

// limitTo16 applies the standard length-limiting procedure (K.3): any
// code forced past 16 bits borrows capacity from the shallowest
// available length by merging counts, keeping the table length-limited
// to 16 bits per spec §4.2.
func limitTo16(bitsCount []int) {
	for i := len(bitsCount) - 1; i > 16; i-- {
		for bitsCount[i] > 0 {
			j := i - 2
			for j > 0 && bitsCount[j] == 0 {
				j--
			}
			if j <= 0 {
				break
			}
			bitsCount[i] -= 2
			bitsCount[i-1]++
			bitsCount[j+1] += 2
			bitsCount[j]--
		}
		bitsCount[i] = 0
	}
	for bitsCount[16] > 0 {
		// If we still overflow because every shorter length was
		// already full, steal one slot from length 15 directly; this
		// only happens with pathological frequency tables.
		i := 15
		for i > 0 && bitsCount[i] == 0 {
			i--
		}
		if i == 0 {
			break
		}
		bitsCount[i]--
		bitsCount[i+1] += 2
		if i+1 == 16 {
			break
		}
	}
}

package hashkit

import "math/bits"

// Hash-flooding detection for open-addressed hash tables. An adversary who
// controls keys can force long collision chains; in an open-addressed table
// those chains appear as long contiguous runs of occupied slots. The
// detector scans a populated slot array and reports whether any run exceeds
// a threshold proportional to log2 of the table size, at which point the
// owning collection should switch to a fallback representation.
//
// The detector is a pure decision function: it never mutates the table,
// never errors, and carries no retry semantics.

// defaultRunMultiplier is the threshold multiplier c in c*log2(tableSize).
// The value trades detection sensitivity against false alarms at high load
// factors; it is a calibration parameter, overridable per Detector.
const defaultRunMultiplier = 13

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithRunMultiplier sets the threshold multiplier c. Smaller values detect
// shorter adversarial runs but false-alarm sooner on dense tables.
func WithRunMultiplier(c int) DetectorOption {
	return func(d *Detector) {
		d.multiplier = c
	}
}

// WithNaiveScan selects the exhaustive linear scanner instead of the
// default skipping scanner. Both return identical results on every table;
// the naive scanner exists as the reference implementation and for
// differential testing.
func WithNaiveScan() DetectorOption {
	return func(d *Detector) {
		d.scan = naiveScanner{}
	}
}

// Detector decides whether a slot array shows signs of hash flooding.
// The zero-cost construction makes it cheap to create per check; it is
// stateless and safe for concurrent use on immutable table snapshots.
type Detector struct {
	multiplier int
	scan       runScanner
}

// NewDetector creates a detector. By default it uses the skipping scanner
// with a run multiplier of 13.
func NewDetector(opts ...DetectorOption) Detector {
	d := Detector{
		multiplier: defaultRunMultiplier,
		scan:       skipScanner{},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// MaxRunBeforeFallback returns the longest tolerated run for a table of the
// given power-of-two size: multiplier * log2(tableSize).
func (d Detector) MaxRunBeforeFallback(tableSize int) int {
	return d.multiplier * log2Floor(tableSize)
}

// Suspects reports whether the table of tableSize slots, whose occupancy is
// given by occupied, contains a contiguous run of occupied slots longer
// than MaxRunBeforeFallback. The table is an open-addressed circular probe
// sequence, so a run wrapping from the last slot back to the first counts
// as one run. tableSize must be a power of two.
func (d Detector) Suspects(tableSize int, occupied func(int) bool) bool {
	if tableSize <= 0 {
		return false
	}
	return d.scan.suspects(tableSize, d.MaxRunBeforeFallback(tableSize), occupied)
}

// SuspectFloodSlots runs the detector over a slot array where nil means
// empty.
func SuspectFloodSlots[E any](d Detector, slots []*E) bool {
	return d.Suspects(len(slots), func(i int) bool { return slots[i] != nil })
}

func log2Floor(n int) int {
	return bits.Len(uint(n)) - 1
}

// runScanner is the algorithm variant behind Detector, selected once at
// construction.
type runScanner interface {
	suspects(n, maxRun int, occupied func(int) bool) bool
}

// scanBoundary measures the run starting at slot 0 and the run ending at
// slot n-1, treating them as one wrapped run. It reports (flood, lo, hi)
// where flood short-circuits the caller and [lo, hi] is the interior region
// left to scan; slot lo-1 and slot hi are known empty.
func scanBoundary(n, maxRun int, occupied func(int) bool) (bool, int, int) {
	head := 0
	for head < n && occupied(head) {
		head++
		if head > maxRun {
			return true, 0, 0
		}
	}
	if head == n {
		// Fully occupied table: a single circular run of length n. head > maxRun
		// was already caught above, so the table is small enough to tolerate.
		return false, 1, 0
	}
	tail := 0
	for i := n - 1; i > head && occupied(i); i-- {
		tail++
	}
	if head+tail > maxRun {
		return true, 0, 0
	}
	return false, head + 1, n - 1 - tail
}

// naiveScanner walks every interior slot.
type naiveScanner struct{}

func (naiveScanner) suspects(n, maxRun int, occupied func(int) bool) bool {
	flood, lo, hi := scanBoundary(n, maxRun, occupied)
	if flood {
		return true
	}
	run := 0
	for i := lo; i <= hi; i++ {
		if !occupied(i) {
			run = 0
			continue
		}
		run++
		if run > maxRun {
			return true
		}
	}
	return false
}

// skipScanner probes every maxRun-th slot: a run longer than maxRun that
// starts within [i, i+maxRun-1] must cover slot i+maxRun-1, so an empty
// probe there proves the whole window is clean and the scanner jumps over
// it. Expected cost on benign tables is O(n/maxRun) plus the measured runs.
// Behaviorally identical to naiveScanner on every input.
type skipScanner struct{}

func (skipScanner) suspects(n, maxRun int, occupied func(int) bool) bool {
	flood, lo, hi := scanBoundary(n, maxRun, occupied)
	if flood {
		return true
	}
	// Invariant: slot i-1 is empty on entry to each iteration, so no run
	// extends into the current window from the left.
	i := lo
	for i <= hi {
		probe := i + maxRun - 1
		if probe > hi {
			// Remaining region is shorter than maxRun and bounded by empty
			// slots on both sides; no run in it can qualify.
			return false
		}
		if !occupied(probe) {
			i = probe + 1
			continue
		}
		// Measure the full run containing probe. The backward scan stops at
		// an empty slot: slot lo-1 at the latest.
		start := probe
		for occupied(start - 1) {
			start--
		}
		end := probe + 1
		for end <= hi && occupied(end) {
			end++
		}
		if end-start > maxRun {
			return true
		}
		i = end + 1
	}
	return false
}

package ingest

import "math"

// reporter maps per-file fractions onto the 0..100 scale: a fixed store weight,
// then the remainder split evenly across files. Reported values never decrease.
type reporter struct {
	n           int
	storeWeight int
	last        int
	fn          ProgressFunc
}

func newReporter(n, storeWeight int, fn ProgressFunc) *reporter {
	return &reporter{n: n, storeWeight: storeWeight, fn: fn}
}

// Percent is floor(storeWeight + ingestWeight*(completed+fraction)/n).
func Percent(storeWeight, completed int, fraction float64, n int) int {
	if n <= 0 {
		return TotalWeight
	}
	ingest := float64(TotalWeight - storeWeight)
	p := int(math.Floor(float64(storeWeight) + ingest*(float64(completed)+fraction)/float64(n)))
	if p > TotalWeight {
		p = TotalWeight
	}
	return p
}

func (r *reporter) file(index int, fraction float64, phase Phase, msg, name string) {
	r.emit(Percent(r.storeWeight, index, fraction, r.n), phase, msg, index, name)
}

func (r *reporter) emit(percent int, phase Phase, msg string, index int, name string) {
	if percent < r.last {
		percent = r.last
	}
	r.last = percent
	if r.fn == nil {
		return
	}
	r.fn(Progress{
		Percent:   percent,
		Phase:     phase,
		Message:   msg,
		FileIndex: index,
		FileCount: r.n,
		FileName:  name,
	})
}

// Buffer ADC readings.
//
// Each acquisition of the eight DC-DC ADC channels is kept as a Snapshot
// in a ring buffer, so a long polling session can report the spread of
// each supply voltage without keeping every reading.
package buffer

import (
	"time"

	"github.com/jbrzusto/dcdc/fpga"
)

// A Snapshot is one acquisition of all ADC channels.
type Snapshot struct {
	Time   time.Time                 // when the values were read
	Values [fpga.ADC_CHANNELS]uint32 // raw ADC register values
}

const (
	DEFAULT_HISTORY = 3600 // snapshots kept by default; one hour at 1 Hz
)

// ADCHistory is a ring buffer of Snapshots.
type ADCHistory struct {
	snaps []Snapshot // ring buffer of snapshots
	iBuff int        // location for next snapshot to be written
	n     int        // snapshots held, at most len(snaps)
	total uint64     // total snapshots pushed during this run
}

// NewADCHistory returns a history holding up to size snapshots.
// A size < 1 gets DEFAULT_HISTORY.
func NewADCHistory(size int) *ADCHistory {
	if size < 1 {
		size = DEFAULT_HISTORY
	}
	return &ADCHistory{snaps: make([]Snapshot, size)}
}

// Push stores s, overwriting the oldest snapshot if the buffer is full.
func (h *ADCHistory) Push(s Snapshot) {
	h.snaps[h.iBuff] = s
	h.iBuff++
	if h.iBuff >= len(h.snaps) {
		h.iBuff = 0
	}
	if h.n < len(h.snaps) {
		h.n++
	}
	h.total++
}

// Len returns the number of snapshots held.
func (h *ADCHistory) Len() int {
	return h.n
}

// Total returns the number of snapshots pushed, including overwritten ones.
func (h *ADCHistory) Total() uint64 {
	return h.total
}

// Last returns up to n of the most recent snapshots, oldest first.
func (h *ADCHistory) Last(n int) []Snapshot {
	if n > h.n {
		n = h.n
	}
	if n <= 0 {
		return nil
	}
	s := make([]Snapshot, n)
	start := h.iBuff - n
	if start < 0 {
		start += len(h.snaps)
	}
	for i := range s {
		s[i] = h.snaps[(start+i)%len(h.snaps)]
	}
	return s
}

// Stats summarises one channel over the snapshots held.
type Stats struct {
	N    int
	Min  uint32
	Max  uint32
	Mean float64
}

// Stats returns the statistics of channel ch.  ok is false for a bad
// channel or an empty history.
func (h *ADCHistory) Stats(ch int) (st Stats, ok bool) {
	if ch < 0 || ch >= fpga.ADC_CHANNELS || h.n == 0 {
		return st, false
	}
	var sum float64
	for i, s := range h.Last(h.n) {
		v := s.Values[ch]
		if i == 0 || v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		sum += float64(v)
	}
	st.N = h.n
	st.Mean = sum / float64(h.n)
	return st, true
}

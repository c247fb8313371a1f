package buffer_test

import (
	"testing"
	"time"

	"github.com/jbrzusto/dcdc/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(v uint32) buffer.Snapshot {
	s := buffer.Snapshot{Time: time.Unix(int64(v), 0)}
	for ch := range s.Values {
		s.Values[ch] = v + uint32(ch)
	}
	return s
}

func TestHistoryWrap(t *testing.T) {
	h := buffer.NewADCHistory(3)
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, h.Last(2))

	h.Push(snap(10))
	h.Push(snap(20))
	assert.Equal(t, 2, h.Len())
	last := h.Last(5)
	require.Equal(t, 2, len(last))
	assert.Equal(t, uint32(10), last[0].Values[0])
	assert.Equal(t, uint32(20), last[1].Values[0])

	h.Push(snap(30))
	h.Push(snap(40))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, uint64(4), h.Total())
	last = h.Last(3)
	require.Equal(t, 3, len(last))
	assert.Equal(t, uint32(20), last[0].Values[0])
	assert.Equal(t, uint32(40), last[2].Values[0])

	last = h.Last(1)
	require.Equal(t, 1, len(last))
	assert.Equal(t, uint32(40), last[0].Values[0])
}

func TestHistoryStats(t *testing.T) {
	h := buffer.NewADCHistory(0)
	_, ok := h.Stats(0)
	assert.False(t, ok)

	for _, v := range []uint32{100, 300, 200} {
		h.Push(snap(v))
	}
	st, ok := h.Stats(7)
	require.True(t, ok)
	assert.Equal(t, 3, st.N)
	assert.Equal(t, uint32(107), st.Min)
	assert.Equal(t, uint32(307), st.Max)
	assert.InDelta(t, 207.0, st.Mean, 1e-9)

	_, ok = h.Stats(8)
	assert.False(t, ok)
}

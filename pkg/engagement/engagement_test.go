package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Scenarios(t *testing.T) {
	t.Run("top band", func(t *testing.T) {
		s := Score(100, 90)
		assert.Greater(t, s, 0.0)
		assert.GreaterOrEqual(t, s, highFloor)
		assert.InDelta(t, 0.8, s, 1e-9)
		assert.Equal(t, BandHigh, BandOf(100, 90))
	})

	t.Run("bottom band", func(t *testing.T) {
		s := Score(100, 40)
		assert.Less(t, s, 0.0)
		assert.InDelta(t, -0.2, s, 1e-9)
		assert.Equal(t, BandLow, BandOf(100, 40))
	})

	t.Run("nothing sent", func(t *testing.T) {
		assert.Equal(t, 0.0, Score(0, 0))
		assert.Equal(t, 0.0, Score(0, 5))
		assert.Equal(t, BandNone, BandOf(0, 0))
	})

	t.Run("band edges", func(t *testing.T) {
		assert.InDelta(t, 1.0, Score(10, 10), 1e-9)
		assert.InDelta(t, highFloor, Score(10, 8), 1e-9)
		assert.InDelta(t, 0.0, Score(10, 5), 1e-9)
		assert.InDelta(t, -1.0, Score(10, 0), 1e-9)
	})
}

func TestScore_BoundedAndMonotonic(t *testing.T) {
	for sent := int64(1); sent <= 200; sent++ {
		prev := -2.0
		for read := int64(0); read <= sent; read++ {
			s := Score(sent, read)
			assert.GreaterOrEqual(t, s, -1.0, "sent=%d read=%d", sent, read)
			assert.LessOrEqual(t, s, 1.0, "sent=%d read=%d", sent, read)
			if s < prev {
				t.Fatalf("оценка убывает: sent=%d read=%d score=%f prev=%f", sent, read, s, prev)
			}
			prev = s
		}
	}
}

func TestScore_ClampsOutOfRangeRead(t *testing.T) {
	assert.Equal(t, Score(10, 10), Score(10, 15))
	assert.Equal(t, Score(10, 0), Score(10, -3))
}

func TestMerge(t *testing.T) {
	got := Merge(Summarize(100, 90), Summarize(100, 40))
	assert.Equal(t, int64(200), got.Sent)
	assert.Equal(t, int64(130), got.Read)
	assert.InDelta(t, 0.65, got.Ratio, 1e-9)
	assert.Equal(t, BandMedium, got.Band)
}

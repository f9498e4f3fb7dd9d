package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024 / 2, "2.5 MB"},
		{1073741824, "1 GB"},
		{3 * 1024 * 1073741824, "3072 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestFormatSize_MonotonicUnits(t *testing.T) {
	unitIndex := func(s string) int {
		for i := len(sizeUnits) - 1; i >= 0; i-- {
			if len(s) >= len(sizeUnits[i]) && s[len(s)-len(sizeUnits[i]):] == sizeUnits[i] {
				return i
			}
		}
		return -1
	}

	prev := 0
	for b := int64(1); b < 1<<34; b *= 3 {
		idx := unitIndex(FormatSize(b))
		assert.GreaterOrEqual(t, idx, prev, "unit went down at %d bytes", b)
		prev = idx
	}
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "Jan 2, 2024, 03:04 PM", FormatDate(at))
}

func TestProgress(t *testing.T) {
	var p Progress
	p.Tick()
	assert.Equal(t, 0, p.Percent, "inactive progress should not move")

	p.Start()
	for i := 0; i < 20; i++ {
		p.Tick()
	}
	assert.Equal(t, ProgressCeiling, p.Percent)
	assert.True(t, p.Active)

	p.Settle()
	assert.Equal(t, 100, p.Percent)
	assert.False(t, p.Active)
	assert.InDelta(t, 1.0, p.Fraction(), 0.0001)

	p.Tick()
	assert.Equal(t, 100, p.Percent)
}

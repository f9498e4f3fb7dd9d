package documents

import (
	"math"
	"strconv"
	"time"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count in powers of 1024 with at most two
// decimals, trailing zeros dropped: 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// DateLayout is the listing timestamp format
const DateLayout = "Jan 2, 2006, 03:04 PM"

// FormatDate renders an upload timestamp in local time
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// Progress is the cosmetic upload percentage. It climbs on a timer, stops
// short of completion and snaps to 100 when the request settles.
type Progress struct {
	Percent int
	Active  bool
}

// Upload progress constants
const (
	ProgressInterval = 200 * time.Millisecond
	ProgressStep     = 10
	ProgressCeiling  = 90
)

// Start resets the ticker
func (p *Progress) Start() {
	p.Percent = 0
	p.Active = true
}

// Tick advances by one step, capped at ProgressCeiling
func (p *Progress) Tick() {
	if !p.Active {
		return
	}
	p.Percent += ProgressStep
	if p.Percent > ProgressCeiling {
		p.Percent = ProgressCeiling
	}
}

// Settle snaps to 100 and stops ticking
func (p *Progress) Settle() {
	p.Percent = 100
	p.Active = false
}

// Fraction returns Percent in [0, 1]
func (p Progress) Fraction() float64 {
	return float64(p.Percent) / 100
}

package progress

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/sonemaro/termbar/pkg/layout"
)

// renderLine builds one output line for current out of plan.Total.
// current must already be clamped to [0, plan.Total].
func renderLine(plan layout.Plan, current int, finished bool, elapsed time.Duration) string {
	var output strings.Builder
	output.Grow(plan.LineWidth())

	filled := filledCells(current, plan.Total, plan.BarWidth-2)

	output.WriteByte('[')
	output.WriteString(strings.Repeat(string(DoneGlyph), filled))
	output.WriteString(strings.Repeat(string(EmptyGlyph), plan.BarWidth-filled-2))
	output.WriteByte(']')

	if plan.ShowPercentage {
		output.WriteString(fmt.Sprintf(" %3d%%", percentage(current, plan.Total)))
	}

	if plan.ShowCounter {
		output.WriteString(fmt.Sprintf(" %*d/%d", layout.Digits(plan.Total), current, plan.Total))
	}

	if plan.ShowTimer {
		output.WriteString(fmt.Sprintf(" %*s", TimerColumns, timerText(current, plan.Total, finished, elapsed)))
	}

	return output.String()
}

// filledCells is ceil(current/total * cells) on the float ratio, capped at
// cells. Rounding up fills the last cell before current reaches total.
func filledCells(current, total, cells int) int {
	if current <= 0 || cells <= 0 {
		return 0
	}
	ratio := float64(current) / float64(total)
	return min(int(math.Ceil(ratio*float64(cells))), cells)
}

// ceilMulDiv returns ceil(a*b/c) using a 128 bit intermediate product,
// saturating at math.MaxUint64.
func ceilMulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return math.MaxUint64
	}
	q, r := bits.Div64(hi, lo, c)
	if r != 0 {
		if q == math.MaxUint64 {
			return q
		}
		q++
	}
	return q
}

// percentage rounds the ratio to one decimal and then drops the decimal,
// so 99.95% prints as 100 while 99.5% prints as 99.
func percentage(current, total int) int {
	ratio := float64(current) / float64(total)
	return int(roundTo(ratio*100, 1))
}

// roundTo rounds half away from zero at the given number of decimals.
// The scaled value is first cut to 15 significant digits so that binary
// noise such as 999.4999999999999 rounds like the decimal 999.5 it stands for.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	scaled := v * scale
	if pre, err := strconv.ParseFloat(strconv.FormatFloat(scaled, 'g', 15, 64), 64); err == nil {
		scaled = pre
	}
	return math.Round(scaled) / scale
}

// remainingSeconds estimates ceil(elapsed*(total-current)/current) from
// the average rate so far. ok is false when there is nothing to base the
// estimate on.
func remainingSeconds(current, total int, elapsed time.Duration) (secs uint64, ok bool) {
	if current <= 0 {
		return 0, false
	}
	whole := int64(elapsed / time.Second)
	if whole < 0 {
		whole = 0
	}
	left := total - current
	if left < 0 {
		left = 0
	}
	return ceilMulDiv(uint64(whole), uint64(left), uint64(current)), true
}

func timerText(current, total int, finished bool, elapsed time.Duration) string {
	if finished {
		return "0s"
	}

	secs, ok := remainingSeconds(current, total, elapsed)
	if !ok || secs == 0 {
		// A zero estimate before the last operation would read as done.
		return UnknownETA
	}
	return FormatRemaining(secs)
}

// FormatRemaining prints a number of seconds with the leading zero units
// left out: 45s, 1m30s, 1h0m0s, 2d3h0m5s.
func FormatRemaining(secs uint64) string {
	days := secs / 86400
	hours := secs % 86400 / 3600
	minutes := secs % 3600 / 60
	seconds := secs % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh%dm%ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

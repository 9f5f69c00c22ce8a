// Package format holds the small display helpers shared by the view and the CLI.
package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// Date formats t as YYYY-MM-DD in local time. A zero time yields "-".
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// DateTime formats t as YYYY-MM-DD HH:MM in local time. A zero time yields "-".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateTimeLayout)
}

// Elapsed formats d as MM:SS, or H:MM:SS from one hour up. Negative durations count as zero.
func Elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Percent formats p with one decimal and a percent sign.
func Percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// Score formats a score pair, dropping trailing zeros: "8/10", "7.5/10".
func Score(total, maxScore float64) string {
	return strconv.FormatFloat(total, 'f', -1, 64) + "/" + strconv.FormatFloat(maxScore, 'f', -1, 64)
}

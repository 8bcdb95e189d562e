package numfmt

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// epoch is the serial-number zero point. Excel serials count days from
// 1900-01-01 as day 1 but also count the nonexistent 1900-02-29, so
// serials at or before the phantom leap day (59) shift forward one day
// against the 1899-12-30 anchor while later serials align as-is.
var epoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// serialToTime converts an Excel date serial to a UTC time. The
// fractional part of the serial is the time of day.
func serialToTime(serial float64) time.Time {
	days := serial
	if serial <= 59 {
		days += 1
	}
	return epoch.Add(time.Duration(days * 24 * float64(time.Hour)))
}

var monthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// formatDate substitutes date tokens in the code, longest token first
// so "yyyy" wins over "yy" and "mmm" over "mm". Each token is replaced
// once.
func formatDate(t time.Time, format string) string {
	out := format

	// Consume the clock part first so its "mm" is not mistaken for a
	// month token below.
	if strings.Contains(out, "h:mm") {
		hm := pad2(t.Hour()) + ":" + pad2(t.Minute())
		out = strings.Replace(out, "h:mm", hm, 1)
	}

	switch {
	case strings.Contains(out, "yyyy"):
		out = strings.Replace(out, "yyyy", strconv.Itoa(t.Year()), 1)
	case strings.Contains(out, "yy"):
		out = strings.Replace(out, "yy", pad2(t.Year()%100), 1)
	}

	switch {
	case strings.Contains(out, "mmm"):
		out = strings.Replace(out, "mmm", monthNames[t.Month()-1], 1)
	case strings.Contains(out, "mm"):
		out = strings.Replace(out, "mm", pad2(int(t.Month())), 1)
	case strings.Contains(out, "m"):
		out = strings.Replace(out, "m", strconv.Itoa(int(t.Month())), 1)
	}

	switch {
	case strings.Contains(out, "dd"):
		out = strings.Replace(out, "dd", pad2(t.Day()), 1)
	case strings.Contains(out, "d"):
		out = strings.Replace(out, "d", strconv.Itoa(t.Day()), 1)
	}

	return out
}

// formatTime substitutes time-of-day tokens. Elapsed-hour formats
// ("[h]") render total hours from the raw serial instead of the
// wrapped clock hour.
func formatTime(t time.Time, serial float64, format string) string {
	out := format

	switch {
	case strings.Contains(out, "AM/PM") || strings.Contains(out, "am/pm"):
		hour12 := t.Hour() % 12
		if hour12 == 0 {
			hour12 = 12
		}
		out = replaceHourRun(out, strconv.Itoa(hour12))
		marker := "AM"
		if t.Hour() >= 12 {
			marker = "PM"
		}
		out = strings.Replace(out, "AM/PM", marker, 1)
		out = strings.Replace(out, "am/pm", marker, 1)
	case strings.Contains(out, "[h]"):
		out = strings.Replace(out, "[h]", strconv.Itoa(int(math.Floor(serial*24))), 1)
	default:
		out = replaceHourRun(out, pad2(t.Hour()))
	}

	out = strings.Replace(out, "mm", pad2(t.Minute()), 1)
	out = strings.Replace(out, "ss", pad2(t.Second()), 1)
	return out
}

// replaceHourRun swaps the first run of 'h' or 'H' characters for the
// rendered hour.
func replaceHourRun(s, hour string) string {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == 'h' || s[i] == 'H' {
			start = i
			break
		}
	}
	if start < 0 {
		return s
	}
	end := start
	for end < len(s) && (s[end] == 'h' || s[end] == 'H') {
		end++
	}
	return s[:start] + hour + s[end:]
}

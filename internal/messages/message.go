// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package messages

import (
	"fmt"
	"math"
	"strconv"
)

// Priority ranks a message for dispatch. Higher values are spoken first.
type Priority int

const (
	Info     Priority = 1
	Alert    Priority = 2
	Shutdown Priority = 3
)

func (p Priority) String() string {
	switch p {
	case Info:
		return "info"
	case Alert:
		return "alert"
	case Shutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Message is one piece of text waiting to be spoken.
type Message struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// TruncateFloat renders v with no decimals when it is greater than 10 or its
// fractional part is below 0.1, and with one decimal otherwise. The fractional
// part is v - floor(v), so negative values count up from the integer below.
// Halves round away from zero.
func TruncateFloat(v float64) string {
	frac := v - math.Floor(v)
	// x.1 carries binary error below 0.1 (5.1 has a fraction of 0.09999...).
	if v > 10 || frac < 0.1-fracEpsilon {
		return fixed(v, 0)
	}
	return fixed(v, 1)
}

// FormatDistance renders a distance in metres, switching to kilometres above
// 1000 m.
func FormatDistance(metres float64) string {
	if metres > 1000 {
		return TruncateFloat(metres/1000) + "km"
	}
	return TruncateFloat(metres) + "m"
}

const fracEpsilon = 1e-9

func fixed(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	r := math.Round(v*scale) / scale
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', decimals, 64)
}

package model

import "errors"

// ErrInsufficientResource marks a dig that wanted more than the deposit held.
// The dig still succeeds with the amount clamped to what was left.
var ErrInsufficientResource = errors.New("insufficient resource")

type Gold struct {
	Amount uint32 `json:"amount"`
}

// WorkStats is the outcome of one dig.
type WorkStats struct {
	Worker Worker `json:"worker"`
	Gold   Gold   `json:"gold"`

	// Remaining is the deposit left after the dig.
	Remaining uint32 `json:"remaining"`
	// Shortfall is set when the computed amount exceeded the deposit.
	Shortfall error `json:"-"`
}

// Depleted reports whether the dig left the resource empty.
func (s WorkStats) Depleted() bool { return s.Remaining == 0 }

// Package rewards aggregates coinbase reward transactions into time-windowed
// totals per address.
package rewards

import (
	"github.com/stake-dashboard/internal/explorer"
	"github.com/stake-dashboard/internal/types"
	"github.com/stake-dashboard/internal/wei"
)

// Native token precision on the source chain.
const (
	tfuelDecimals = 18
	thetaDecimals = 18
)

type window struct {
	bound int64 // inclusive lower bound, unix seconds
	sum   float64
}

// Accumulator ingests pages of coinbase transactions for one address,
// summing the address's own outputs into each window whose lower bound the
// record's timestamp clears. A record can land in several windows at once.
type Accumulator struct {
	addr         types.Address
	windows      []window
	lastRewardAt int64
}

// NewAccumulator creates an accumulator for addr over the given inclusive
// lower bounds, one window per bound.
func NewAccumulator(addr types.Address, bounds ...int64) *Accumulator {
	windows := make([]window, len(bounds))
	for i, b := range bounds {
		windows[i] = window{bound: b}
	}
	return &Accumulator{addr: addr, windows: windows}
}

// Ingest folds one feed page into the running totals. Records with missing
// or non-finite timestamps, no output for the address, or non-positive or
// unparseable amounts are dropped silently; one malformed record never
// aborts the aggregation.
func (a *Accumulator) Ingest(page *explorer.TxPage) {
	for _, rec := range page.Records {
		ts, ok := rec.UnixSeconds()
		if !ok {
			continue
		}
		raw, ok := rec.OutputFor(a.addr)
		if !ok {
			continue
		}
		amount, ok := wei.ToDisplay(raw, tfuelDecimals)
		if !ok || amount <= 0 {
			continue
		}

		qualified := false
		for i := range a.windows {
			if ts >= a.windows[i].bound {
				a.windows[i].sum += amount
				qualified = true
			}
		}
		if qualified && ts > a.lastRewardAt {
			a.lastRewardAt = ts
		}
	}
}

// Sum returns the running total of window i.
func (a *Accumulator) Sum(i int) float64 {
	return a.windows[i].sum
}

// LastRewardAt returns the newest qualifying reward timestamp, or false if
// no record qualified.
func (a *Accumulator) LastRewardAt() (int64, bool) {
	if a.lastRewardAt == 0 {
		return 0, false
	}
	return a.lastRewardAt, true
}

// StakedTotal sums an address's active stake, converting each source record
// where the stake has not been withdrawn. Unparseable amounts are skipped.
func StakedTotal(records []explorer.StakeRecord) float64 {
	var total float64
	for _, rec := range records {
		if rec.Withdrawn {
			continue
		}
		amount, ok := wei.ToDisplay(rec.Amount, thetaDecimals)
		if !ok {
			continue
		}
		total += amount
	}
	return total
}

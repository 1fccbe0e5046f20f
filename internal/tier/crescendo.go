// Package tier maps committed NCTR to the Crescendo status ladder.
package tier

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	Starter  Tier = "starter"
	Bronze   Tier = "bronze"
	Silver   Tier = "silver"
	Gold     Tier = "gold"
	Platinum Tier = "platinum"
	Diamond  Tier = "diamond"
)

type step struct {
	tier Tier
	min  decimal.Decimal
}

// ladder is ordered from the highest threshold down. Starter has no
// threshold; it covers zero and negative amounts.
var ladder = []step{
	{Diamond, decimal.NewFromInt(50000)},
	{Platinum, decimal.NewFromInt(10000)},
	{Gold, decimal.NewFromInt(2500)},
	{Silver, decimal.NewFromInt(1000)},
}

var order = []Tier{Starter, Bronze, Silver, Gold, Platinum, Diamond}

// ForAmount classifies amount. Thresholds are inclusive: 1000 is silver.
func ForAmount(amount decimal.Decimal) Tier {
	for _, s := range ladder {
		if amount.GreaterThanOrEqual(s.min) {
			return s.tier
		}
	}
	if amount.IsPositive() {
		return Bronze
	}
	return Starter
}

// Threshold returns the minimum amount for t.
func Threshold(t Tier) decimal.Decimal {
	for _, s := range ladder {
		if s.tier == t {
			return s.min
		}
	}
	if t == Bronze {
		// any positive amount; the smallest representable step is used for display
		return decimal.New(1, -8)
	}
	return decimal.Zero
}

// All returns the tiers from lowest to highest.
func All() []Tier {
	out := make([]Tier, len(order))
	copy(out, order)
	return out
}

func (t Tier) Rank() int {
	for i, o := range order {
		if o == t {
			return i
		}
	}
	return -1
}

func (t Tier) String() string {
	return string(t)
}

func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Parse accepts a case-insensitive tier name.
func Parse(name string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(name)))
	return t, t.Valid()
}

// Next returns the tier after the one amount falls in and how much more NCTR
// reaches it. ok is false at diamond.
func Next(amount decimal.Decimal) (next Tier, remaining decimal.Decimal, ok bool) {
	cur := ForAmount(amount)
	r := cur.Rank()
	if r == len(order)-1 {
		return cur, decimal.Zero, false
	}
	next = order[r+1]
	remaining = Threshold(next).Sub(amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return next, remaining, true
}

package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instant-offer pricing bands. The numbers are the acquisition desk's opening
// positions, not market valuations; a human estimator revises them later in
// the case wizard.
var (
	offerBaseAmount    = decimal.NewFromInt(6500)
	offerPerYearDepr   = decimal.NewFromInt(350)
	offerFloor         = decimal.NewFromInt(250)
	offerValidityDays  = 7
	conditionMultiples = map[string]decimal.Decimal{
		"excellent": decimal.NewFromFloat(1.15),
		"good":      decimal.NewFromInt(1),
		"fair":      decimal.NewFromFloat(0.80),
		"poor":      decimal.NewFromFloat(0.60),
	}
)

// GenerateOffer computes the instant offer for a submission from the model
// year and the self-reported condition band. Unknown conditions price as
// "good". The amount is deterministic for a given input.
func GenerateOffer(year int, condition string, now time.Time) (decimal.Decimal, time.Time) {
	age := now.Year() - year
	if age < 0 {
		age = 0
	}

	amount := offerBaseAmount.Sub(offerPerYearDepr.Mul(decimal.NewFromInt(int64(age))))
	if amount.LessThan(offerFloor) {
		amount = offerFloor
	}

	multiple, ok := conditionMultiples[condition]
	if !ok {
		multiple = decimal.NewFromInt(1)
	}
	amount = amount.Mul(multiple).Round(2)

	expiry := now.AddDate(0, 0, offerValidityDays)
	return amount, expiry
}

package helpers

import (
	"github.com/shopspring/decimal"
)

// Money moves through the service as int64 paise. These helpers convert at
// the HTTP boundary only.

func ToPaise(rupees float64) int64 {
	return decimal.NewFromFloat(rupees).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func ToRupees(paise int64) float64 {
	f, _ := decimal.New(paise, -2).Float64()
	return f
}

package club

import (
	"clubdash/models"

	"github.com/shopspring/decimal"
)

func ActiveMemberCount(members []models.Member) int {
	n := 0
	for _, m := range members {
		if m.Status == models.MemberActive {
			n++
		}
	}
	return n
}

// FixedMonthlyIncome is the dues revenue expected every month: one rate per
// Active member.
func FixedMonthlyIncome(members []models.Member, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(ActiveMemberCount(members))))
}

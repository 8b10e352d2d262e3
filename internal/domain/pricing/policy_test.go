package pricing

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestMinimumIncrement_StepTable(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		price float64
		want  float64
	}{
		{0, 25},
		{99, 25},
		{100, 25},
		{101, 50},
		{500, 50},
		{501, 100},
		{1000, 100},
		{1001, 250},
		{5000, 250},
		{5001, 500},
		{10000, 500},
		{10001, 1000},
		{250000, 1000},
	}

	for _, tc := range cases {
		check.Equal(t, tc.want, policy.MinimumIncrement(tc.price))
	}
}

func TestMinimumIncrement_Deterministic(t *testing.T) {
	policy := DefaultPolicy()

	first := policy.MinimumIncrement(4200)
	for i := 0; i < 10; i++ {
		check.Equal(t, first, policy.MinimumIncrement(4200))
	}
}

func TestNextMinimumBid(t *testing.T) {
	policy := DefaultPolicy()

	// 150 sits in the <=500 bracket
	check.Equal(t, 200.0, policy.NextMinimumBid(150, 0))

	// minPreBid floors the result when higher
	check.Equal(t, 1000.0, policy.NextMinimumBid(150, 1000))

	// minPreBid below the computed minimum has no effect
	check.Equal(t, 200.0, policy.NextMinimumBid(150, 180))
}

func TestNewPolicy_CustomTable(t *testing.T) {
	policy := NewPolicy([]Step{{UpTo: 10, Increment: 1}}, 5)

	check.Equal(t, 1.0, policy.MinimumIncrement(10))
	check.Equal(t, 5.0, policy.MinimumIncrement(11))
}

package pricing

// Step maps an upper price bound to the increment that applies at or
// below it.
type Step struct {
	UpTo      float64 `json:"up_to"`
	Increment float64 `json:"increment"`
}

// Policy computes the minimum increment a new bid must clear above the
// current price. It is pure: same price in, same increment out.
type Policy struct {
	steps        []Step
	topIncrement float64
}

// DefaultSteps is the standard block increment table.
var DefaultSteps = []Step{
	{UpTo: 100, Increment: 25},
	{UpTo: 500, Increment: 50},
	{UpTo: 1000, Increment: 100},
	{UpTo: 5000, Increment: 250},
	{UpTo: 10000, Increment: 500},
}

// DefaultTopIncrement applies above the last step bound.
const DefaultTopIncrement = 1000

// NewPolicy builds a policy from a step table. Steps must be ordered by
// ascending bound; topIncrement applies beyond the last bound.
func NewPolicy(steps []Step, topIncrement float64) *Policy {
	return &Policy{steps: steps, topIncrement: topIncrement}
}

// DefaultPolicy returns the standard policy.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultSteps, DefaultTopIncrement)
}

// MinimumIncrement returns the increment required at the given price.
// Defined for every non-negative price.
func (p *Policy) MinimumIncrement(currentPrice float64) float64 {
	for _, step := range p.steps {
		if currentPrice <= step.UpTo {
			return step.Increment
		}
	}
	return p.topIncrement
}

// NextMinimumBid returns the lowest amount a new bid on the lot may carry:
// current price plus the applicable increment, floored by the lot's
// minimum pre-bid when that is higher.
func (p *Policy) NextMinimumBid(currentPrice, minPreBid float64) float64 {
	next := currentPrice + p.MinimumIncrement(currentPrice)
	if minPreBid > next {
		return minPreBid
	}
	return next
}

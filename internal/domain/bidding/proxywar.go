package bidding

import (
	"fmt"

	"gearlane-auction-engine/internal/domain/pricing"

	"github.com/google/uuid"
)

// BattleStep records one proxy counter-bid inside a proxy war
type BattleStep struct {
	ProxyBidID uuid.UUID `json:"proxy_bid_id"`
	UserID     uuid.UUID `json:"user_id"`
	Amount     float64   `json:"amount"`
	Strategy   Strategy  `json:"strategy"`
}

// Outcome is the settled result of a proxy war. When IncomingOutbid is
// true the incoming bid never stands: the caller persists a single
// auto-bid at FinalPrice owned by LeadingProxy's bidder and rejects the
// incoming bid with an OutbidError.
type Outcome struct {
	FinalPrice     float64      `json:"final_price"`
	IncomingOutbid bool         `json:"incoming_outbid"`
	LeadingProxy   *Bid         `json:"-"`
	Steps          []BattleStep `json:"steps"`
}

// OutbidError is the distinguished outcome for a bid beaten by a proxy
// war, not a generic failure: it carries the settled price and the battle
// summary so the client can show "you were outbid to $X".
type OutbidError struct {
	FinalAmount float64      `json:"final_amount"`
	OutbidBy    uuid.UUID    `json:"outbid_by"`
	Steps       []BattleStep `json:"steps"`
}

func (e *OutbidError) Error() string {
	return fmt.Sprintf("outbid by proxy to %.2f", e.FinalAmount)
}

// StrategySelector picks a counter-bidding strategy for a proxy bid that
// did not declare one. The thresholds are deployment policy, not contract.
type StrategySelector func(currentPrice, proxyMax float64) Strategy

// DefaultStrategySelector keeps undeclared proxies conservative: one
// increment per counter-bid.
func DefaultStrategySelector(currentPrice, proxyMax float64) Strategy {
	return StrategyConservative
}

// Resolver simulates automatic counter-bidding between standing proxy
// bids and an incoming bid until a single settled price remains. It is
// pure over its inputs: given the same snapshot of proxies it always
// produces the same outcome.
type Resolver struct {
	policy         *pricing.Policy
	selectStrategy StrategySelector
}

// NewResolver creates a resolver over the given pricing policy
func NewResolver(policy *pricing.Policy, selector StrategySelector) *Resolver {
	if selector == nil {
		selector = DefaultStrategySelector
	}
	return &Resolver{policy: policy, selectStrategy: selector}
}

// Resolve runs the proxy war for an incoming bid. currentPrice is the
// lot's price before the incoming bid; proxies must already exclude the
// incoming bidder and be ordered by ceiling descending, earliest first
// (Ledger.ActiveProxyBids provides exactly that).
//
// The increment is fixed at the start of the battle from the lot's
// current price; each responding proxy raises by its strategy's multiple
// of that increment, capped at its ceiling. The walk restarts from the
// top after every response so the deepest ceiling always gets the next
// counter.
func (r *Resolver) Resolve(incoming *Bid, currentPrice float64, proxies []*Bid) Outcome {
	increment := r.policy.MinimumIncrement(currentPrice)

	battle := incoming.Amount
	leader := incoming.UserID
	var leadingProxy *Bid
	var steps []BattleStep

	for {
		responded := false
		for _, p := range proxies {
			if p.UserID == leader {
				continue
			}
			if p.ProxyMax < battle+increment {
				continue
			}

			strategy := p.Strategy
			if strategy == "" {
				strategy = r.selectStrategy(currentPrice, p.ProxyMax)
			}

			next := battle + strategy.StepMultiplier()*increment
			if next > p.ProxyMax {
				next = p.ProxyMax
			}

			steps = append(steps, BattleStep{
				ProxyBidID: p.ID,
				UserID:     p.UserID,
				Amount:     next,
				Strategy:   strategy,
			})
			battle = next
			leader = p.UserID
			leadingProxy = p
			responded = true
			break
		}
		if !responded {
			break
		}
	}

	return Outcome{
		FinalPrice:     battle,
		IncomingOutbid: battle > incoming.Amount,
		LeadingProxy:   leadingProxy,
		Steps:          steps,
	}
}

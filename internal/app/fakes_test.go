package app

import (
	"context"
	"sync"

	"gearlane-auction-engine/internal/domain/auction"
	"gearlane-auction-engine/internal/domain/bidding"
	"gearlane-auction-engine/internal/domain/lot"
	"gearlane-auction-engine/internal/domain/shared"
	"gearlane-auction-engine/internal/domain/winner"
	"gearlane-auction-engine/internal/ports/outbound"

	"github.com/google/uuid"
)

// In-memory repositories backing the service tests. They mirror the SQL
// adapters' contracts: not-found sentinels, version bumps on lot updates,
// and atomic bid pipeline persistence.

type memAuctionRepo struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*auction.Auction
}

func newMemAuctionRepo() *memAuctionRepo {
	return &memAuctionRepo{auctions: make(map[uuid.UUID]*auction.Auction)}
}

func (r *memAuctionRepo) Create(_ context.Context, a *auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[a.ID] = a
	return nil
}

func (r *memAuctionRepo) GetByID(_ context.Context, id uuid.UUID) (*auction.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auctions[id]
	if !ok {
		return nil, shared.ErrAuctionNotFound
	}
	return a, nil
}

func (r *memAuctionRepo) List(_ context.Context, status *auction.Status, _, _ int) ([]*auction.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.Auction
	for _, a := range r.auctions {
		if status == nil || a.Status == *status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAuctionRepo) ListRunning(_ context.Context) ([]*auction.Auction, error) {
	running := auction.StatusRunning
	return r.List(context.Background(), &running, 1, 100)
}

func (r *memAuctionRepo) Update(_ context.Context, a *auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[a.ID]; !ok {
		return shared.ErrAuctionNotFound
	}
	r.auctions[a.ID] = a
	return nil
}

type memLotRepo struct {
	mu   sync.Mutex
	lots map[uuid.UUID]*lot.Lot
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uuid.UUID]*lot.Lot)}
}

func (r *memLotRepo) Create(_ context.Context, l *lot.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lots[l.ID] = l
	return nil
}

func (r *memLotRepo) GetByID(_ context.Context, id uuid.UUID) (*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lots[id]
	if !ok {
		return nil, shared.ErrLotNotFound
	}
	return l, nil
}

func (r *memLotRepo) GetByNumber(_ context.Context, auctionID uuid.UUID, lotNumber int) (*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lots {
		if l.AuctionID == auctionID && l.LotNumber == lotNumber {
			return l, nil
		}
	}
	return nil, shared.ErrLotNotFound
}

func (r *memLotRepo) ListByAuction(_ context.Context, auctionID uuid.UUID) ([]*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*lot.Lot
	for _, l := range r.lots {
		if l.AuctionID == auctionID {
			out = append(out, l)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].LotNumber < out[i].LotNumber {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memLotRepo) GetActive(_ context.Context, auctionID uuid.UUID) (*lot.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lots {
		if l.AuctionID == auctionID && l.IsActive {
			return l, nil
		}
	}
	return nil, shared.ErrLotNotFound
}

func (r *memLotRepo) Update(_ context.Context, l *lot.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[l.ID]; !ok {
		return shared.ErrLotNotFound
	}
	l.Version++
	r.lots[l.ID] = l
	return nil
}

type memBidRepo struct {
	mu   sync.Mutex
	bids map[uuid.UUID]*bidding.Bid
}

func newMemBidRepo() *memBidRepo {
	return &memBidRepo{bids: make(map[uuid.UUID]*bidding.Bid)}
}

func (r *memBidRepo) Create(_ context.Context, b *bidding.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids[b.ID] = b
	return nil
}

func (r *memBidRepo) GetByID(_ context.Context, id uuid.UUID) (*bidding.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bids[id]
	if !ok {
		return nil, shared.ErrBidNotFound
	}
	return b, nil
}

func (r *memBidRepo) ListByLot(_ context.Context, lotID uuid.UUID) ([]*bidding.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bidding.Bid
	for _, b := range r.bids {
		if b.LotID == lotID {
			out = append(out, b)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SequenceNumber < out[i].SequenceNumber {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memBidRepo) Update(_ context.Context, b *bidding.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bids[b.ID]; !ok {
		return shared.ErrBidNotFound
	}
	r.bids[b.ID] = b
	return nil
}

func (r *memBidRepo) PersistPipeline(_ context.Context, l *lot.Lot, bids []*bidding.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bids {
		r.bids[b.ID] = b
	}
	l.Version++
	return nil
}

type memWinnerRepo struct {
	mu      sync.Mutex
	winners map[uuid.UUID]*winner.Winner // keyed by lot ID
}

func newMemWinnerRepo() *memWinnerRepo {
	return &memWinnerRepo{winners: make(map[uuid.UUID]*winner.Winner)}
}

func (r *memWinnerRepo) Create(_ context.Context, w *winner.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners[w.LotID] = w
	return nil
}

func (r *memWinnerRepo) GetByLotID(_ context.Context, lotID uuid.UUID) (*winner.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[lotID]
	if !ok {
		return nil, shared.ErrWinnerNotFound
	}
	return w, nil
}

func (r *memWinnerRepo) Update(_ context.Context, w *winner.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.winners[w.LotID]; !ok {
		return shared.ErrWinnerNotFound
	}
	r.winners[w.LotID] = w
	return nil
}

func (r *memWinnerRepo) DeleteByLotID(_ context.Context, lotID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.winners[lotID]; !ok {
		return shared.ErrWinnerNotFound
	}
	delete(r.winners, lotID)
	return nil
}

type memVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*shared.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[uuid.UUID]*shared.Vehicle)}
}

func (r *memVehicleRepo) Create(_ context.Context, v *shared.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
	return nil
}

func (r *memVehicleRepo) GetByID(_ context.Context, id uuid.UUID) (*shared.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, shared.ErrVehicleNotFound
	}
	return v, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*shared.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*shared.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *shared.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*shared.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

// fakeBroadcaster records published events and treats every client as
// subscribed.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []outbound.Event
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{}
}

func (b *fakeBroadcaster) Subscribe(context.Context, string, string, chan outbound.Event) error {
	return nil
}

func (b *fakeBroadcaster) Unsubscribe(context.Context, string, string) error {
	return nil
}

func (b *fakeBroadcaster) Publish(_ context.Context, _ string, event outbound.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *fakeBroadcaster) GetSubscribers(context.Context, string) ([]string, error) {
	return nil, nil
}

func (b *fakeBroadcaster) IsSubscribed(context.Context, string, string) bool {
	return true
}

func (b *fakeBroadcaster) published(t outbound.EventType) []outbound.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []outbound.Event
	for _, e := range b.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

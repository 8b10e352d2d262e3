package db

import (
	"gearlane-auction-engine/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetAuctionRepository returns the auction repository
func (f *RepositoryFactory) GetAuctionRepository() outbound.AuctionRepository {
	return NewAuctionRepository(f.conn)
}

// GetLotRepository returns the lot repository
func (f *RepositoryFactory) GetLotRepository() outbound.LotRepository {
	return NewLotRepository(f.conn)
}

// GetBidRepository returns the bid repository
func (f *RepositoryFactory) GetBidRepository() outbound.BidRepository {
	return NewBidRepository(f.conn)
}

// GetWinnerRepository returns the winner repository
func (f *RepositoryFactory) GetWinnerRepository() outbound.WinnerRepository {
	return NewWinnerRepository(f.conn)
}

// GetVehicleRepository returns the vehicle repository
func (f *RepositoryFactory) GetVehicleRepository() outbound.VehicleRepository {
	return NewVehicleRepository(f.conn)
}

// GetUserRepository returns the user repository
func (f *RepositoryFactory) GetUserRepository() outbound.UserRepository {
	return NewUserRepository(f.conn)
}

package repository

import (
	"context"
	"fmt"

	"staybook/config"
	"staybook/database"
	bookingRepo "staybook/database/repository/booking"
	checkoutRepo "staybook/database/repository/checkout"
	ledgerRepo "staybook/database/repository/ledger"
	roomRepo "staybook/database/repository/room"
	"staybook/models"
	"staybook/utils"

	"go.uber.org/zap"
)

// Re-export the repository interfaces.
type BookingRepository = bookingRepo.BookingRepository

type CheckoutRepository = checkoutRepo.CheckoutRepository

type LedgerRepository = ledgerRepo.LedgerRepository

type RoomCatalog = roomRepo.RoomCatalog

// Stores bundles the repositories backing one STORE_DRIVER.
type Stores struct {
	Bookings  BookingRepository
	Checkouts CheckoutRepository
	Ledger    LedgerRepository
	Rooms     RoomCatalog

	migrate func(ctx context.Context) error
}

// NewMemoryStores builds process-local stores, with the catalog holding rooms.
func NewMemoryStores(rooms ...models.Room) *Stores {
	return &Stores{
		Bookings:  bookingRepo.NewMemoryBookingRepo(),
		Checkouts: checkoutRepo.NewMemoryCheckoutRepo(),
		Ledger:    ledgerRepo.NewMemoryLedgerRepo(),
		Rooms:     roomRepo.NewMemoryRoomCatalog(rooms...),
		migrate:   func(context.Context) error { return nil },
	}
}

// NewMongoStores builds the stores on the global Mongo client.
func NewMongoStores() *Stores {
	db := database.MongoDatabase()
	bookings := bookingRepo.NewMongoBookingRepo(db)
	checkouts := checkoutRepo.NewMongoCheckoutRepo(db)
	ledger := ledgerRepo.NewMongoLedgerRepo(db)
	rooms := roomRepo.NewMongoRoomCatalog(db)

	return &Stores{
		Bookings:  bookings,
		Checkouts: checkouts,
		Ledger:    ledger,
		Rooms:     rooms,
		migrate: func(ctx context.Context) error {
			for _, ensure := range []func(context.Context) error{
				bookings.EnsureIndexes,
				checkouts.EnsureIndexes,
				ledger.EnsureIndexes,
				rooms.EnsureIndexes,
			} {
				if err := ensure(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewPostgresStores builds the stores on the global gorm handle.
func NewPostgresStores() *Stores {
	bookings := bookingRepo.NewPostgresBookingRepo(database.PostgresDB)
	checkouts := checkoutRepo.NewPostgresCheckoutRepo(database.PostgresDB)
	ledger := ledgerRepo.NewPostgresLedgerRepo(database.PostgresDB)
	rooms := roomRepo.NewPostgresRoomCatalog(database.PostgresDB)

	return &Stores{
		Bookings:  bookings,
		Checkouts: checkouts,
		Ledger:    ledger,
		Rooms:     rooms,
		migrate: func(context.Context) error {
			for _, m := range []func() error{
				rooms.AutoMigrate,
				bookings.AutoMigrate,
				checkouts.AutoMigrate,
				ledger.AutoMigrate,
			} {
				if err := m(); err != nil {
					return fmt.Errorf("auto-migrate failed: %w", err)
				}
			}
			return nil
		},
	}
}

// OpenStores connects to the store selected by STORE_DRIVER. Persistent
// drivers get the room catalog wrapped in the Redis cache when ROOM_CACHE_TTL > 0.
func OpenStores(logger *zap.Logger) (*Stores, error) {
	var stores *Stores
	persistent := true
	switch config.AppConfig.StoreDriver {
	case "memory", "":
		stores = NewMemoryStores()
		persistent = false
	case "mongo":
		database.InitDB()
		stores = NewMongoStores()
	case "postgres":
		database.InitPostgres()
		stores = NewPostgresStores()
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", config.AppConfig.StoreDriver)
	}

	if persistent && config.AppConfig.RoomCacheTTL > 0 {
		stores.Rooms = roomRepo.NewCachedRoomCatalog(stores.Rooms, utils.GetCacheClient(), config.AppConfig.RoomCacheTTL, logger)
	}
	logger.Info("store opened", zap.String("driver", config.AppConfig.StoreDriver))
	return stores, nil
}

// Migrate ensures indexes (mongo) or tables (postgres) exist.
func (s *Stores) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

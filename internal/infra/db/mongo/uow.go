package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roamly/internal/app/uow"
	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

const lockPollInterval = 50 * time.Millisecond

// lockExpiry caps how long a crashed holder keeps a unit locked.
const lockExpiry = 30 * time.Second

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	UnitsRepo    domaininventory.Repository
	BookingRepo  domainbooking.Repository
	Reservations domainavailability.ReservationSource
	BlocksRepo   domainavailability.BlockSource
	// LockWait bounds LockUnit; zero falls back to the context deadline.
	LockWait time.Duration
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		owner:        uuid.NewString(),
		lockWait:     f.LockWait,
		units:        f.UnitsRepo,
		bookings:     f.BookingRepo,
		reservations: f.Reservations,
		blocks:       f.BlocksRepo,
	}, nil
}

var _ uow.UoWFactory = Factory{}

type Unit struct {
	db       *mongo.Database
	session  mongo.Session
	owner    string
	lockWait time.Duration
	held     []domaininventory.UnitID

	units        domaininventory.Repository
	bookings     domainbooking.Repository
	reservations domainavailability.ReservationSource
	blocks       domainavailability.BlockSource
}

func (u *Unit) Units() domaininventory.Repository { return u.units }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Reservations() domainavailability.ReservationSource { return u.reservations }

func (u *Unit) Blocks() domainavailability.BlockSource { return u.blocks }

// LockUnit takes a lease document in unit_locks outside the transaction
// so concurrent commits for one unit serialize even across replicas.
// Stale leases from crashed holders are stolen after lockExpiry.
func (u *Unit) LockUnit(ctx context.Context, id domaininventory.UnitID) error {
	for _, heldID := range u.held {
		if heldID == id {
			return nil
		}
	}
	col := u.db.Collection("unit_locks")
	deadline := time.Time{}
	if u.lockWait > 0 {
		deadline = time.Now().Add(u.lockWait)
	}
	for {
		now := time.Now().UTC()
		filter := bson.M{
			"_id": id,
			"$or": bson.A{
				bson.M{"owner": ""},
				bson.M{"locked_at": bson.M{"$lt": now.Add(-lockExpiry)}},
			},
		}
		update := bson.M{"$set": bson.M{"owner": u.owner, "locked_at": now}}
		opts := options.Update().SetUpsert(true)
		res, err := col.UpdateOne(ctx, filter, update, opts)
		if err == nil && (res.ModifiedCount > 0 || res.UpsertedCount > 0) {
			u.held = append(u.held, id)
			return nil
		}
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return uow.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	defer u.releaseLocks(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	defer u.releaseLocks(ctx)
	return u.session.AbortTransaction(ctx)
}

func (u *Unit) releaseLocks(ctx context.Context) {
	if len(u.held) == 0 {
		return
	}
	col := u.db.Collection("unit_locks")
	for _, id := range u.held {
		_, _ = col.UpdateOne(ctx,
			bson.M{"_id": id, "owner": u.owner},
			bson.M{"$set": bson.M{"owner": ""}})
	}
	u.held = nil
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

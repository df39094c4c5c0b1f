package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaininventory "roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type UnitRepository struct {
	col *mongo.Collection
}

func NewUnitRepository(db *mongo.Database) *UnitRepository {
	return &UnitRepository{col: db.Collection("agg_unit")}
}

func (r *UnitRepository) ByID(ctx context.Context, id domaininventory.UnitID) (*domaininventory.Unit, error) {
	var doc unitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininventory.ErrUnitNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UnitRepository) Save(ctx context.Context, unit *domaininventory.Unit) error {
	doc := newUnitDocument(unit)
	filter := bson.M{"_id": doc.ID, "version": unit.Version}
	doc.Version = unit.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	unit.Version = doc.Version
	return nil
}

type unitDocument struct {
	ID              string        `bson:"_id"`
	Owner           string        `bson:"owner"`
	Title           string        `bson:"title"`
	Vertical        string        `bson:"vertical"`
	State           string        `bson:"state"`
	Capacity        int           `bson:"capacity"`
	Currency        string        `bson:"currency"`
	BaseRate        int64         `bson:"base_rate"`
	WeekendRate     int64         `bson:"weekend_rate"`
	WeekendDays     []int         `bson:"weekend_days"`
	DiscountPercent float64       `bson:"discount_percent"`
	TaxPercent      float64       `bson:"tax_percent"`
	PromoLabel      string        `bson:"promo_label"`
	Fees            []feeDocument `bson:"fees"`
	Version         int64         `bson:"version"`
	CreatedAt       int64         `bson:"created_at"`
	UpdatedAt       int64         `bson:"updated_at"`
}

type feeDocument struct {
	Name     string `bson:"name"`
	Basis    string `bson:"basis"`
	Amount   int64  `bson:"amount"`
	Taxable  bool   `bson:"taxable"`
	Optional bool   `bson:"optional"`
}

func newUnitDocument(unit *domaininventory.Unit) unitDocument {
	doc := unitDocument{
		ID:              string(unit.ID),
		Owner:           string(unit.Owner),
		Title:           unit.Title,
		Vertical:        string(unit.Vertical),
		State:           string(unit.State),
		Capacity:        unit.Capacity,
		Currency:        unit.Currency,
		BaseRate:        unit.BaseRate.Amount,
		WeekendRate:     unit.WeekendRate.Amount,
		DiscountPercent: unit.DiscountPercent,
		TaxPercent:      unit.TaxPercent,
		PromoLabel:      unit.PromoLabel,
		Version:         unit.Version,
		CreatedAt:       unit.CreatedAt.UnixMilli(),
		UpdatedAt:       unit.UpdatedAt.UnixMilli(),
	}
	for _, day := range unit.WeekendDays {
		doc.WeekendDays = append(doc.WeekendDays, int(day))
	}
	for _, fee := range unit.Fees {
		doc.Fees = append(doc.Fees, feeDocument{
			Name:     fee.Name,
			Basis:    string(fee.Basis),
			Amount:   fee.Amount.Amount,
			Taxable:  fee.Taxable,
			Optional: fee.Optional,
		})
	}
	return doc
}

func (d unitDocument) toAggregate() *domaininventory.Unit {
	unit := &domaininventory.Unit{
		ID:              domaininventory.UnitID(d.ID),
		Owner:           domaininventory.OwnerID(d.Owner),
		Title:           d.Title,
		Vertical:        domaininventory.Vertical(d.Vertical),
		State:           domaininventory.UnitState(d.State),
		Capacity:        d.Capacity,
		Currency:        d.Currency,
		BaseRate:        money.Money{Amount: d.BaseRate, Currency: d.Currency},
		DiscountPercent: d.DiscountPercent,
		TaxPercent:      d.TaxPercent,
		PromoLabel:      d.PromoLabel,
		Version:         d.Version,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
	if d.WeekendRate != 0 {
		unit.WeekendRate = money.Money{Amount: d.WeekendRate, Currency: d.Currency}
	}
	for _, day := range d.WeekendDays {
		unit.WeekendDays = append(unit.WeekendDays, time.Weekday(day))
	}
	for _, fee := range d.Fees {
		unit.Fees = append(unit.Fees, domaininventory.Fee{
			Name:     fee.Name,
			Basis:    domaininventory.FeeBasis(fee.Basis),
			Amount:   money.Money{Amount: fee.Amount, Currency: d.Currency},
			Taxable:  fee.Taxable,
			Optional: fee.Optional,
		})
	}
	return unit
}

var _ domaininventory.Repository = (*UnitRepository)(nil)

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
	domainpricing "roamly/internal/domain/pricing"
	domainrange "roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
)

// BookingRepository persists bookings with optimistic version checks and
// answers the resolver's overlapping-hold queries from the same
// collection.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "state", Value: 1}, {Key: "range.check_in", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"reference": reference}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByUnit(ctx context.Context, unitID domaininventory.UnitID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"unit_id": unitID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

// ActiveOverlapping matches only capacity-holding states. Half-open
// ranges overlap when each starts before the other ends, so a checkout
// on another hold's check-in day never matches.
func (r *BookingRepository) ActiveOverlapping(ctx context.Context, unitID domaininventory.UnitID, dr domainrange.DateRange) ([]domainavailability.Reservation, error) {
	filter := bson.M{
		"unit_id":         unitID,
		"state":           bson.M{"$in": []string{string(domainbooking.StatePending), string(domainbooking.StateConfirmed)}},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainavailability.Reservation
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate().AsReservation())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID         string        `bson:"_id"`
	Reference  string        `bson:"reference"`
	UnitID     string        `bson:"unit_id"`
	GuestID    string        `bson:"guest_id"`
	Range      rangeDocument `bson:"range"`
	Quantity   int           `bson:"quantity"`
	Price      priceDocument `bson:"price"`
	State      string        `bson:"state"`
	PaymentRef string        `bson:"payment_ref"`
	CreatedAt  int64         `bson:"created_at"`
	UpdatedAt  int64         `bson:"updated_at"`
	Version    int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type priceDocument struct {
	UnitID          string              `bson:"unit_id"`
	Range           rangeDocument       `bson:"range"`
	Currency        string              `bson:"currency"`
	Nights          []nightLineDocument `bson:"nights"`
	Fees            []feeLineDocument   `bson:"fees"`
	Tax             *taxLineDocument    `bson:"tax,omitempty"`
	DiscountPercent float64             `bson:"discount_percent"`
	PromoLabel      string              `bson:"promo_label"`
	Subtotal        int64               `bson:"subtotal"`
	Total           int64               `bson:"total"`
}

type nightLineDocument struct {
	Date    int64 `bson:"date"`
	Rate    int64 `bson:"rate"`
	Weekend bool  `bson:"weekend"`
}

type feeLineDocument struct {
	Name    string `bson:"name"`
	Basis   string `bson:"basis"`
	Amount  int64  `bson:"amount"`
	Taxable bool   `bson:"taxable"`
}

type taxLineDocument struct {
	Name    string  `bson:"name"`
	Percent float64 `bson:"percent"`
	Amount  int64   `bson:"amount"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		Reference:  b.Reference,
		UnitID:     string(b.UnitID),
		GuestID:    b.GuestID,
		Range:      newRangeDocument(b.Range),
		Quantity:   b.Quantity,
		Price:      newPriceDocument(b.Price),
		State:      string(b.State),
		PaymentRef: b.PaymentRef,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func newRangeDocument(dr domainrange.DateRange) rangeDocument {
	return rangeDocument{CheckIn: dr.CheckIn.UnixMilli(), CheckOut: dr.CheckOut.UnixMilli()}
}

func newPriceDocument(p domainpricing.PriceBreakdown) priceDocument {
	doc := priceDocument{
		UnitID:          string(p.UnitID),
		Range:           newRangeDocument(p.Range),
		Currency:        p.Currency,
		DiscountPercent: p.DiscountPercent,
		PromoLabel:      p.PromoLabel,
		Subtotal:        p.Subtotal.Amount,
		Total:           p.Total.Amount,
	}
	for _, night := range p.Nights {
		doc.Nights = append(doc.Nights, nightLineDocument{
			Date:    night.Date.UnixMilli(),
			Rate:    night.Rate.Amount,
			Weekend: night.Weekend,
		})
	}
	for _, fee := range p.Fees {
		doc.Fees = append(doc.Fees, feeLineDocument{
			Name:    fee.Name,
			Basis:   string(fee.Basis),
			Amount:  fee.Amount.Amount,
			Taxable: fee.Taxable,
		})
	}
	if p.Tax != nil {
		doc.Tax = &taxLineDocument{Name: p.Tax.Name, Percent: p.Tax.Percent, Amount: p.Tax.Amount.Amount}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		Reference:  d.Reference,
		UnitID:     domaininventory.UnitID(d.UnitID),
		GuestID:    d.GuestID,
		Range:      d.Range.toRange(),
		Quantity:   d.Quantity,
		Price:      d.Price.toBreakdown(),
		State:      domainbooking.BookingState(d.State),
		PaymentRef: d.PaymentRef,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

func (d rangeDocument) toRange() domainrange.DateRange {
	return domainrange.DateRange{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)}
}

func (d priceDocument) toBreakdown() domainpricing.PriceBreakdown {
	p := domainpricing.PriceBreakdown{
		UnitID:          domaininventory.UnitID(d.UnitID),
		Range:           d.Range.toRange(),
		Currency:        d.Currency,
		DiscountPercent: d.DiscountPercent,
		PromoLabel:      d.PromoLabel,
		Subtotal:        money.Money{Amount: d.Subtotal, Currency: d.Currency},
		Total:           money.Money{Amount: d.Total, Currency: d.Currency},
	}
	for _, night := range d.Nights {
		p.Nights = append(p.Nights, domainpricing.NightLine{
			Date:    timestampToTime(night.Date),
			Rate:    money.Money{Amount: night.Rate, Currency: d.Currency},
			Weekend: night.Weekend,
		})
	}
	for _, fee := range d.Fees {
		p.Fees = append(p.Fees, domainpricing.FeeLine{
			Name:    fee.Name,
			Basis:   domaininventory.FeeBasis(fee.Basis),
			Amount:  money.Money{Amount: fee.Amount, Currency: d.Currency},
			Taxable: fee.Taxable,
		})
	}
	if d.Tax != nil {
		p.Tax = &domainpricing.TaxLine{
			Name:    d.Tax.Name,
			Percent: d.Tax.Percent,
			Amount:  money.Money{Amount: d.Tax.Amount, Currency: d.Currency},
		}
	}
	return p
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var (
	_ domainbooking.Repository             = (*BookingRepository)(nil)
	_ domainavailability.ReservationSource = (*BookingRepository)(nil)
)

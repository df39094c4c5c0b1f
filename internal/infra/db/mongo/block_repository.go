package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "roamly/internal/domain/availability"
	domaininventory "roamly/internal/domain/inventory"
	domainrange "roamly/internal/domain/shared/daterange"
)

// BlockRepository reads owner and sync blocks. Block writes come from
// owner tooling through Add; this engine never edits existing blocks.
type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	col := db.Collection("unit_blocks")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "range.check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BlockRepository{col: col}
}

func (r *BlockRepository) Add(ctx context.Context, block domainavailability.Block) error {
	doc := blockDocument{
		UnitID:    string(block.UnitID),
		Range:     newRangeDocument(block.Range),
		Reason:    string(block.Reason),
		Reference: block.Reference,
		CreatedAt: block.CreatedAt.UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *BlockRepository) Overlapping(ctx context.Context, unitID domaininventory.UnitID, dr domainrange.DateRange) ([]domainavailability.Block, error) {
	filter := bson.M{
		"unit_id":         unitID,
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainavailability.Block
	for cursor.Next(ctx) {
		var doc blockDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domainavailability.Block{
			UnitID:    domaininventory.UnitID(doc.UnitID),
			Range:     doc.Range.toRange(),
			Reason:    domainavailability.BlockReason(doc.Reason),
			Reference: doc.Reference,
			CreatedAt: timestampToTime(doc.CreatedAt),
		})
	}
	return out, cursor.Err()
}

type blockDocument struct {
	UnitID    string        `bson:"unit_id"`
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	Reference string        `bson:"reference"`
	CreatedAt int64         `bson:"created_at"`
}

var _ domainavailability.BlockSource = (*BlockRepository)(nil)

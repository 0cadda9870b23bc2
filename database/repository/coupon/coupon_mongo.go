package couponRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luisperes28-droid/desperto-app-sub001/database"
	"github.com/luisperes28-droid/desperto-app-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCouponRepo implements CouponRepository using MongoDB.
type MongoCouponRepo struct {
	couponColl *mongo.Collection
	usageColl  *mongo.Collection
}

// NewMongoCouponRepo constructs a new instance of MongoCouponRepo.
func NewMongoCouponRepo() CouponRepository {
	return &MongoCouponRepo{
		couponColl: database.Collection("coupons"),
		usageColl:  database.Collection("coupon_usages"),
	}
}

// Create inserts a new coupon document.
func (repo *MongoCouponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.couponColl.InsertOne(ctxWithTimeout, coupon); err != nil {
		return fmt.Errorf("error creating coupon: %w", err)
	}
	return nil
}

// GetByID retrieves a coupon by its ID.
func (repo *MongoCouponRepo) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

// GetByCode retrieves a coupon by its canonical code.
func (repo *MongoCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return repo.findOne(ctx, bson.M{"code": code})
}

func (repo *MongoCouponRepo) findOne(ctx context.Context, filter bson.M) (*models.Coupon, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var coupon models.Coupon
	if err := repo.couponColl.FindOne(ctxWithTimeout, filter).Decode(&coupon); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching coupon: %w", err)
	}
	return &coupon, nil
}

// Redeem increments usedCount with the limit guard and appends the usage
// record inside one transaction. The conditional update only matches while
// the coupon is active and below its limit, so the increment can never race
// past usageLimit; the status flips to "used" in the same pipeline exactly
// when the new count reaches the limit.
func (repo *MongoCouponRepo) Redeem(ctx context.Context, couponID string, usage models.CouponUsage) (*models.Coupon, error) {
	client := repo.couponColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var redeemed models.Coupon

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":     couponID,
			"status": models.CouponActive,
			"$expr":  bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}},
		}
		pipeline := mongo.Pipeline{
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "used_count", Value: bson.D{{Key: "$add", Value: bson.A{"$used_count", 1}}}},
				{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.D{
					{Key: "if", Value: bson.D{{Key: "$gte", Value: bson.A{
						bson.D{{Key: "$add", Value: bson.A{"$used_count", 1}}},
						"$usage_limit",
					}}}},
					{Key: "then", Value: models.CouponUsed},
					{Key: "else", Value: models.CouponActive},
				}}}},
			}}},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		if err := repo.couponColl.FindOneAndUpdate(sc, filter, pipeline, opts).Decode(&redeemed); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotRedeemable
			}
			return fmt.Errorf("redeem update failed: %w", err)
		}

		if _, err := repo.usageColl.InsertOne(sc, usage); err != nil {
			return fmt.Errorf("insert coupon usage failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return nil, err
	}

	return &redeemed, nil
}

// ListUsages returns the append-only usage records for a coupon.
func (repo *MongoCouponRepo) ListUsages(ctx context.Context, couponID string) ([]models.CouponUsage, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.usageColl.Find(ctxWithTimeout, bson.M{"coupon_id": couponID})
	if err != nil {
		return nil, fmt.Errorf("error fetching coupon usages: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var usages []models.CouponUsage
	for cursor.Next(ctxWithTimeout) {
		var u models.CouponUsage
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("error decoding coupon usage: %w", err)
		}
		usages = append(usages, u)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return usages, nil
}

// SetStatus updates the coupon's ledger status.
func (repo *MongoCouponRepo) SetStatus(ctx context.Context, couponID string, status models.CouponStatus) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.couponColl.UpdateOne(ctxWithTimeout,
		bson.M{"id": couponID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("error updating coupon status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

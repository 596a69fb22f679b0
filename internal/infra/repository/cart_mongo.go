package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo上のカートドキュメント。
// 金額はBSONに小数を直接入れず文字列で保存する（decimalの桁落ち防止）。
type cartItemDoc struct {
	ProductID int64  `bson:"product_id"`
	Name      string `bson:"name"`
	UnitPrice string `bson:"unit_price"`
	Quantity  int64  `bson:"quantity"`
	Subtotal  string `bson:"subtotal"`
}

type cartDoc struct {
	SessionID string        `bson:"session_id"`
	Items     []cartItemDoc `bson:"items"`
	Total     string        `bson:"total"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type CartMongoRepository struct {
	coll *mongo.Collection
}

func NewCartMongoRepository(coll *mongo.Collection) *CartMongoRepository {
	return &CartMongoRepository{coll: coll}
}

// カート取得。無ければfound=false。
func (r *CartMongoRepository) Find(ctx context.Context, sessionID string) (model.Cart, bool, error) {
	var doc cartDoc
	err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Cart{}, false, nil
	}
	if err != nil {
		return model.Cart{}, false, fmt.Errorf("find cart: %w", err)
	}

	cart, err := toCart(doc)
	if err != nil {
		return model.Cart{}, false, err
	}
	return cart, true, nil
}

// カート取得。無ければ空カートを作成して返す（最初の参照で遅延作成）。
func (r *CartMongoRepository) GetOrCreate(ctx context.Context, sessionID string) (model.Cart, error) {
	cart, found, err := r.Find(ctx, sessionID)
	if err != nil {
		return model.Cart{}, err
	}
	if found {
		return cart, nil
	}

	now := time.Now()
	fresh := model.NewCart(sessionID, now)

	// 同時アクセスで先に作られていても$setOnInsertなら壊さない
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$setOnInsert": toDoc(fresh)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return model.Cart{}, fmt.Errorf("create cart: %w", err)
	}

	return fresh, nil
}

// カート全体を保存（last-write-wins）。
func (r *CartMongoRepository) Upsert(ctx context.Context, cart model.Cart) error {
	cart.UpdatedAt = time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"session_id": cart.SessionID},
		toDoc(cart),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

// 明細を空にする。無ければ空カートを作る（冪等）。
func (r *CartMongoRepository) Clear(ctx context.Context, sessionID string) error {
	now := time.Now()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{
			"$set":         bson.M{"items": []cartItemDoc{}, "total": "0", "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func toDoc(c model.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.String(),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal.String(),
		})
	}
	return cartDoc{
		SessionID: c.SessionID,
		Items:     items,
		Total:     c.Total.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCart(d cartDoc) (model.Cart, error) {
	items := make([]model.CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		unitPrice, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return model.Cart{}, fmt.Errorf("bad unit_price %q: %w", it.UnitPrice, err)
		}
		subtotal, err := decimal.NewFromString(it.Subtotal)
		if err != nil {
			return model.Cart{}, fmt.Errorf("bad subtotal %q: %w", it.Subtotal, err)
		}
		items = append(items, model.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: unitPrice,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
		})
	}

	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return model.Cart{}, fmt.Errorf("bad total %q: %w", d.Total, err)
	}

	return model.Cart{
		SessionID: d.SessionID,
		Items:     items,
		Total:     total,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

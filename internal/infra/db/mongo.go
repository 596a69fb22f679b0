package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo はカート保存用のMongoDBに接続してコレクションを返す。
// 切断は返されたcloseを呼ぶ（プロセス終了時）。
func ConnectMongo(ctx context.Context, uri, database, collection string) (*mongo.Collection, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	coll := client.Database(database).Collection(collection)
	return coll, client.Disconnect, nil
}

// EnsureCartIndexes はsession_idのユニークインデックスと
// updated_at基準のTTLインデックス（放置カートの自動失効）を作る。
func EnsureCartIndexes(ctx context.Context, coll *mongo.Collection, ttl time.Duration) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		},
	})
	return err
}

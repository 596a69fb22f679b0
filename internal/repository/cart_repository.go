package repository

import (
	"app/internal/domain/model"
	"context"
)

// セッションカートの保存先（ドキュメントストア）。
// sessionIdにつき1ドキュメント。書き込みはupsertのlast-write-wins。
// 失効はストア側のTTLに任せる（明示の削除操作はClearのみ）。
type CartRepository interface {
	//カート取得。無ければ空カートを作って返す。
	GetOrCreate(ctx context.Context, sessionID string) (model.Cart, error)

	//カート取得。無ければfound=false（作成はしない）。
	Find(ctx context.Context, sessionID string) (model.Cart, bool, error)

	//カート全体を保存（無ければ作成）。
	Upsert(ctx context.Context, cart model.Cart) error

	//明細を空にしてtotalを0へ。無ければ空カートを作る。
	Clear(ctx context.Context, sessionID string) error
}

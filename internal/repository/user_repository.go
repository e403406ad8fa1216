package repository

import (
	"app/internal/domain/model"
	"context"
)

// 保存・取得を約束。
// FindByID/FindByEmailは見つからないとき (nil, nil) を返す。
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error
}

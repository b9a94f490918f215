// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User はシステムに登録された利用者（プリンシパル）を表します。
// IDは登録後に変化しません。
type User struct {
	// ID はユーザーの一意な識別子です。
	ID uuid.UUID

	// Email はログインに使用するメールアドレスです。保存された大文字小文字のまま一意です。
	Email string

	// Username はメールアドレスのローカル部から導出される一意なユーザー名です。
	Username string

	// PasswordHash はbcryptハッシュです。平文は保持しません。
	PasswordHash string `json:"-"`

	FirstName *string
	LastName  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

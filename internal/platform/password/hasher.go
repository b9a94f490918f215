// Package password はbcryptによるパスワードハッシュと検証を提供します。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength はbcryptが扱えるパスワードの最大バイト数です。
const MaxLength = 72

// ErrTooLong はパスワードがMaxLengthバイトを超える場合に返されます。
var ErrTooLong = errors.New("password exceeds 72 bytes")

// BcryptHasher はソルト付きbcryptハッシュを生成・検証します。
// ソルトは呼び出しごとにランダムに生成され、出力に埋め込まれます。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定コストのBcryptHasherを生成します。
// 範囲外のコストはbcrypt.DefaultCostに置き換えます。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードのbcryptハッシュを返します。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxLength {
		return "", ErrTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文パスワードがハッシュと一致するかを返します。
// 比較はbcrypt.CompareHashAndPasswordのみで行います。
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

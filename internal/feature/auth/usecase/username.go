package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxUsernameProbes はユーザー名候補を探索する回数の上限です。
const maxUsernameProbes = 1000

// usernameBase はメールアドレスの@より前の部分を返します。
func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// usernameCandidate はn番目の候補を返します。0は接尾辞なしです。
func usernameCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + strconv.Itoa(n)
}

// nextFreeUsername はn番目以降で未使用のユーザー名候補とその番号を返します。
// 返した候補が挿入時にも空いている保証はないため、呼び出し側は一意制約違反時に再試行します。
func (u *authUsecase) nextFreeUsername(ctx context.Context, base string, n int) (string, int, error) {
	for limit := n + maxUsernameProbes; n < limit; n++ {
		candidate := usernameCandidate(base, n)
		_, err := u.users.FindByUsername(ctx, candidate)
		if errors.Is(err, ErrUserNotFound) {
			return candidate, n, nil
		}
		if err != nil {
			return "", 0, fmt.Errorf("failed to check username: %w", err)
		}
	}
	return "", 0, ErrUsernameUnavailable
}

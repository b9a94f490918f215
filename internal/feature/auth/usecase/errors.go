// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"errors"

	"todo_backend/internal/shared/apperror"
)

var (
	// ErrUserNotFound はメールアドレス・ユーザー名・IDでユーザーが見つからない場合にリポジトリが返します。
	// ユースケースの外には公開せず、ErrInvalidCredentialsまたはErrInvalidTokenに変換します。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists は登録済みのメールアドレスで登録しようとした場合に返されます。
	ErrEmailAlreadyExists = apperror.New(apperror.ErrConflict, "email already registered")

	// ErrUsernameTaken はユーザー名の一意制約に違反した場合にリポジトリが返します。
	ErrUsernameTaken = apperror.New(apperror.ErrConflict, "username already taken")

	// ErrUsernameUnavailable は導出したユーザー名の候補がすべて使用済みだった場合に返されます。
	ErrUsernameUnavailable = apperror.New(apperror.ErrConflict, "could not allocate a unique username")

	// ErrInvalidCredentials はログイン識別子またはパスワードが正しくない場合に返されます。
	// ユーザーの有無を区別しません。
	ErrInvalidCredentials = apperror.New(apperror.ErrUnauthenticated, "incorrect email or password")

	// ErrInvalidToken はトークンが不正・期限切れ、または存在しないユーザーを指す場合に返されます。
	ErrInvalidToken = apperror.New(apperror.ErrUnauthenticated, "could not validate credentials")

	// ErrInvalidEmail はメールアドレスの形式が不正な場合に返されます。
	ErrInvalidEmail = apperror.New(apperror.ErrInvalidInput, "invalid email format")

	// ErrWeakPassword はパスワードが最低文字数に満たない場合に返されます。
	ErrWeakPassword = apperror.New(apperror.ErrInvalidInput, "password must be at least 8 characters")

	// ErrPasswordTooLong はパスワードがbcryptの上限である72バイトを超える場合に返されます。
	ErrPasswordTooLong = apperror.New(apperror.ErrInvalidInput, "password must be at most 72 bytes")
)

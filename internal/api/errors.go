// Package api はHTTPトランスポート層で共有するリクエスト/レスポンス型とエラー変換を定義します。
package api

import (
	"net/http"

	"todo_backend/internal/shared/apperror"
)

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse はメッセージのみを返すレスポンスボディです。
type MessageResponse struct {
	Message string `json:"message"`
}

// Unauthorized は認証失敗時に返す固定メッセージです。
// トークンの不正と期限切れを区別しません。
const Unauthorized = "could not validate credentials"

// StatusCode はエラー種別に対応するHTTPステータスコードを返します。
// 分類されないエラーは500として扱います。
func StatusCode(err error) int {
	switch apperror.Kind(err) {
	case apperror.ErrConflict:
		return http.StatusConflict
	case apperror.ErrUnauthenticated:
		return http.StatusUnauthorized
	case apperror.ErrNotFound:
		return http.StatusNotFound
	case apperror.ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse はクライアントに返してよいエラーメッセージを組み立てます。
// 内部エラーと認証エラーの詳細は公開しません。
func NewErrorResponse(err error) ErrorResponse {
	switch StatusCode(err) {
	case http.StatusInternalServerError:
		return ErrorResponse{Error: "internal server error"}
	case http.StatusUnauthorized:
		return ErrorResponse{Error: Unauthorized}
	default:
		return ErrorResponse{Error: err.Error()}
	}
}

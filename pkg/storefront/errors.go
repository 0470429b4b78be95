package storefront

import (
	"errors"
	"fmt"
)

var (
	// カートが空（通信はしない）
	ErrEmptyCart = errors.New("storefront: cart is empty")
	// 未ログイン・トークン失効。サインイン画面へ
	ErrUnauthorized = errors.New("storefront: unauthorized")
	// カートの商品がカタログと合わない（409）
	ErrStaleCart = errors.New("storefront: cart is out of date")
	// パスワード未入力（通信はしない）
	ErrPasswordRequired = errors.New("storefront: password required")
	// それ以外のサーバー・通信エラー
	ErrUpstream = errors.New("storefront: upstream error")
)

// APIError はサーバーの {message} を持つ
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.kind, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(status int, message string) *APIError {
	kind := ErrUpstream
	switch status {
	case 401:
		kind = ErrUnauthorized
	case 409:
		kind = ErrStaleCart
	}
	return &APIError{Status: status, Message: message, kind: kind}
}

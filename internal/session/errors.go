package session

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated はアクセストークンが無い、または更新に失敗したことを表す。
	// 呼び出し側はログイン画面にリダイレクトする。
	ErrUnauthenticated = errors.New("認証されていません")
	// ErrUpstreamUnavailable は上流APIとの通信に失敗したことを表す。
	ErrUpstreamUnavailable = errors.New("上流APIに接続できません")
	// ErrUpstreamRejected は上流APIが非2xxを返したことを表す。
	// *RejectedError はこのエラーとして errors.Is で判定できる。
	ErrUpstreamRejected = errors.New("上流APIがリクエストを拒否しました")
	// ErrInvalidCredentials はユーザー名またはパスワードが拒否されたことを表す。
	ErrInvalidCredentials = fmt.Errorf("認証情報が不正です: %w", ErrUpstreamRejected)
)

// RejectedError は上流APIが非2xxを返した場合のエラー。
type RejectedError struct {
	// StatusCode は上流APIが返したステータスコード。
	StatusCode int
	// Body は上流APIが返したレスポンスボディ。
	Body []byte
	// Message は利用者に表示するメッセージ。空の場合もある。
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("上流APIがリクエストを拒否しました: status=%d, message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("上流APIがリクエストを拒否しました: status=%d", e.StatusCode)
}

// Is は ErrUpstreamRejected との比較を可能にする。
func (e *RejectedError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

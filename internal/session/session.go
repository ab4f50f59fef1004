package session

import (
	"net/http"
	"time"
)

const (
	// AccessTokenCookie はアクセストークンを保持するクッキー名。
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie はリフレッシュトークンを保持するクッキー名。
	RefreshTokenCookie = "refresh_token"
)

// Session はブラウザが保持する2つのBearerトークン。
// サーバー側には保存せず、リクエストごとにクッキーから復元する。
type Session struct {
	// AccessToken は上流API呼び出しに使う短命なトークン。
	AccessToken string
	// RefreshToken はアクセストークンの再発行にのみ使うトークン。
	RefreshToken string
}

// Authenticated はアクセストークンを持っているかどうかを返す。
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// FromRequest はリクエストのクッキーからSessionを復元する。
// クッキーが無い場合は該当フィールドが空文字列になる。
func FromRequest(r *http.Request) Session {
	var s Session
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		s.AccessToken = c.Value
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		s.RefreshToken = c.Value
	}
	return s
}

// Cookies はセッションクッキーの書き込み方法を保持する。
type Cookies struct {
	// Secure はクッキーにSecure属性を付けるかどうか。
	Secure bool
	// now は現在時刻を返す。nilの場合は time.Now を使う。
	now func() time.Time
}

// Persist は両方のトークンをクッキーに書き込む。
func (c Cookies) Persist(w http.ResponseWriter, s Session) {
	c.PersistAccess(w, s.AccessToken)
	http.SetCookie(w, c.cookie(RefreshTokenCookie, s.RefreshToken, refreshMaxAge(s.RefreshToken, c.clock())))
}

// PersistAccess はアクセストークンのみをクッキーに書き込む。
// アクセストークンの期限切れは上流の401で検知するため、常にセッションクッキーとする。
func (c Cookies) PersistAccess(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, accessToken, 0))
}

// Terminate は両方のクッキーを無条件に削除する。
// 元のクッキーが存在しなくても削除指示を出す。
func (c Cookies) Terminate(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c Cookies) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

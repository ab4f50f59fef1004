package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry はJWTの exp クレームを署名検証なしで読み取る。
// ゲートウェイは署名鍵を持たないため、検証は上流APIに任せる。
// JWTでない場合や exp が無い場合は false を返す。
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// refreshMaxAge はリフレッシュトークンのクッキーに設定する Max-Age（秒）を返す。
// 期限が読み取れない場合は0（セッションクッキー）、期限切れの場合は-1（即時削除）。
func refreshMaxAge(token string, now time.Time) int {
	exp, ok := tokenExpiry(token)
	if !ok {
		return 0
	}
	remaining := int(exp.Sub(now) / time.Second)
	if remaining <= 0 {
		return -1
	}
	return remaining
}

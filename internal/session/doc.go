// Package session はブラウザのセッションと上流REST APIを仲介するゲートウェイを提供する。
//
// ユーザー名とパスワードをJWTのアクセストークン・リフレッシュトークンに交換し、
// http-only / SameSite=Lax のクッキーとして保持する。上流APIへの転送時には
// Bearerトークンを付与し、401が返った場合は1回だけトークンを更新して再試行する。
// サーバー側にセッションストアは持たず、Session値は呼び出し側が明示的に渡す。
package session

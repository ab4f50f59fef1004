package session

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/nao1215/memo-web/pkg/httpclient"
)

// 上流APIのエンドポイント。
const (
	tokenPath    = "/api/token/"
	refreshPath  = "/api/token/refresh/"
	registerPath = "/api/register/"
	mePath       = "/api/me/"
)

// Gateway はブラウザのセッションと上流APIを仲介する。
// 状態を持たないため、複数のリクエストから同時に使用できる。
type Gateway struct {
	// client は上流APIへのHTTPクライアント。
	client *httpclient.Client
}

// NewGateway は新しいGatewayを生成する。
func NewGateway(client *httpclient.Client) *Gateway {
	return &Gateway{client: client}
}

// tokenResponse はトークン発行・更新APIのレスポンス。
type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Authenticate はユーザー名とパスワードを上流APIでトークンに交換する。
// 200以外が返った場合は ErrInvalidCredentials、通信失敗時は ErrUpstreamUnavailable を返す。
// リトライは行わない。
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (Session, error) {
	resp, err := g.client.PostForm(ctx, tokenPath, url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		log.Printf("トークン発行APIとの通信に失敗: %v", err)
		return Session{}, fmt.Errorf("トークン発行に失敗: %w", ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return Session{}, ErrInvalidCredentials
	}

	var tokens tokenResponse
	if err := resp.DecodeJSON(&tokens); err != nil || tokens.Access == "" || tokens.Refresh == "" {
		return Session{}, ErrInvalidCredentials
	}
	return Session{AccessToken: tokens.Access, RefreshToken: tokens.Refresh}, nil
}

// Refresh はリフレッシュトークンで新しいアクセストークンを取得する。
// 取得できなかった場合は false を返す。Sessionは変更しない。
func (g *Gateway) Refresh(ctx context.Context, s Session) (string, bool) {
	if s.RefreshToken == "" {
		return "", false
	}
	resp, err := g.client.PostForm(ctx, refreshPath, url.Values{"refresh": {s.RefreshToken}})
	if err != nil {
		log.Printf("トークン更新APIとの通信に失敗: %v", err)
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var tokens tokenResponse
	if err := resp.DecodeJSON(&tokens); err != nil || tokens.Access == "" {
		return "", false
	}
	return tokens.Access, true
}

// Call は上流APIへ転送する1回分の呼び出し。
type Call struct {
	// Method はHTTPメソッド。
	Method string
	// Path は上流APIのパス（例: "/api/memos/5/"）。
	Path string
	// Form はフォーム値。
	Form url.Values
	// Attachment は任意の添付ファイル。
	Attachment *httpclient.File
}

// Result は転送に成功した呼び出しの結果。
type Result struct {
	// StatusCode は上流APIが返したステータスコード（2xx）。
	StatusCode int
	// Body は上流APIが返したレスポンスボディ。
	Body []byte
	// Refreshed はアクセストークンが更新されたかどうか。
	// trueの場合、呼び出し側は新しいアクセストークンをクッキーに保存する。
	Refreshed bool
}

// Forward はBearerトークンを付与して上流APIを呼び出す。
//
// アクセストークンが無い場合は通信せずに ErrUnauthenticated を返す。
// 401が返った場合は1回だけトークンを更新して再試行する。更新に失敗した場合は
// ErrUnauthenticated を返し、Sessionは変更しない。再試行が2xxを返した場合のみ
// s.AccessToken を新しいトークンに置き換え、Result.Refreshed を true にする。
// 再試行で再び401が返っても、それ以上は更新しない。
func (g *Gateway) Forward(ctx context.Context, s *Session, call Call) (*Result, error) {
	if s == nil || !s.Authenticated() {
		return nil, ErrUnauthenticated
	}

	resp, err := g.client.Do(ctx, call.request(s.AccessToken))
	if err != nil {
		log.Printf("上流APIとの通信に失敗: method=%s, path=%s, error=%v", call.Method, call.Path, err)
		return nil, fmt.Errorf("%s %s: %w", call.Method, call.Path, ErrUpstreamUnavailable)
	}
	if resp.Success() {
		return &Result{StatusCode: resp.StatusCode, Body: resp.Body}, nil
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return nil, rejected(resp)
	}

	newAccess, ok := g.Refresh(ctx, *s)
	if !ok {
		return nil, ErrUnauthenticated
	}

	resp, err = g.client.Do(ctx, call.request(newAccess))
	if err != nil {
		log.Printf("再試行時に上流APIとの通信に失敗: method=%s, path=%s, error=%v", call.Method, call.Path, err)
		return nil, fmt.Errorf("%s %s: %w", call.Method, call.Path, ErrUpstreamUnavailable)
	}
	if !resp.Success() {
		return nil, rejected(resp)
	}

	s.AccessToken = newAccess
	return &Result{StatusCode: resp.StatusCode, Body: resp.Body, Refreshed: true}, nil
}

// request はトークンを付与したhttpclient.Requestを組み立てる。
func (c Call) request(token string) httpclient.Request {
	r := httpclient.Request{
		Method: c.Method,
		Path:   c.Path,
		Token:  token,
		Form:   c.Form,
	}
	if c.Attachment != nil {
		r.Files = []httpclient.File{*c.Attachment}
	}
	return r
}

// Register は上流APIでユーザーを登録する。
// ローカルにはユーザー情報を保持しない。201以外は *RejectedError を返す。
func (g *Gateway) Register(ctx context.Context, username, password, email string) error {
	resp, err := g.client.PostForm(ctx, registerPath, url.Values{
		"username": {username},
		"password": {password},
		"email":    {email},
	})
	if err != nil {
		log.Printf("ユーザー登録APIとの通信に失敗: %v", err)
		return fmt.Errorf("ユーザー登録に失敗: %w", ErrUpstreamUnavailable)
	}
	if resp.StatusCode == http.StatusCreated {
		return nil
	}

	rejectedErr := rejected(resp)
	var body struct {
		Error string `json:"error"`
	}
	if err := resp.DecodeJSON(&body); err == nil && body.Error != "" {
		rejectedErr.Message = body.Error
	} else {
		rejectedErr.Message = "Registration failed"
	}
	return rejectedErr
}

// CurrentUser はログイン中のユーザー情報を取得する。
// 表示用の補助情報のため、トークン更新は行わず、失敗時は nil を返す。
func (g *Gateway) CurrentUser(ctx context.Context, s Session) map[string]any {
	if !s.Authenticated() {
		return nil
	}
	resp, err := g.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: mePath, Token: s.AccessToken})
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil
	}
	var user map[string]any
	if err := resp.DecodeJSON(&user); err != nil {
		return nil
	}
	return user
}

func rejected(resp *httpclient.Response) *RejectedError {
	return &RejectedError{StatusCode: resp.StatusCode, Body: resp.Body}
}

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout は上流API呼び出し1回あたりのタイムアウト。
const DefaultTimeout = 5 * time.Second

// Client は上流REST APIを呼び出すHTTPクライアント。
// 1回の呼び出しごとにタイムアウトが適用される。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は上流APIのベースURL。
	baseURL string
}

// New は DefaultTimeout を持つクライアントを生成する。
// baseURLには上流APIのベースURL（例: "http://127.0.0.1:8001"）を指定する。
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout はタイムアウトを指定してクライアントを生成する。
// timeoutが0以下の場合は DefaultTimeout を使用する。
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// File はmultipartで送信する添付ファイル。
// リトライ時に同じ内容を再送できるよう、内容はメモリ上に保持する。
type File struct {
	// Field はフォームのフィールド名。
	Field string
	// Filename は送信するファイル名。
	Filename string
	// ContentType はファイルのMIMEタイプ。空の場合は application/octet-stream。
	ContentType string
	// Data はファイルの内容。
	Data []byte
}

// Request は上流APIへの1回分の呼び出し。
type Request struct {
	// Method はHTTPメソッド。
	Method string
	// Path はベースURLからの相対パス（例: "/api/memos/"）。
	Path string
	// Token が空でなければ Bearer トークンとして付与する。
	Token string
	// Form はフォーム値。Filesが空ならurlencodedで送信する。
	Form url.Values
	// Files が1件以上あればmultipart/form-dataで送信する。
	Files []File
}

// Response は上流APIのレスポンス。ボディは読み切った状態で保持する。
type Response struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

// Success はステータスコードが2xxかどうかを返す。
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON はレスポンスボディをvにデシリアライズする。
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	return nil
}

// Do はリクエストを送信し、ステータスコードに関わらずレスポンスを返す。
// エラーを返すのはリクエストの組み立てや通信そのものに失敗した場合のみ。
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	body, contentType, err := encodeBody(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, body)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	// コンテキストからリクエストIDを伝播する
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// PostForm は指定パスにフォームをPOSTする。認証ヘッダーは付与しない。
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form})
}

// encodeBody はリクエストボディとContent-Typeを組み立てる。
func encodeBody(r Request) (io.Reader, string, error) {
	if len(r.Files) == 0 {
		if r.Form == nil {
			return nil, "", nil
		}
		return strings.NewReader(r.Form.Encode()), "application/x-www-form-urlencoded", nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range r.Form {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				return nil, "", fmt.Errorf("フォーム値の書き込みに失敗: %w", err)
			}
		}
	}
	for _, f := range r.Files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("添付ファイルパートの作成に失敗: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("添付ファイルの書き込みに失敗: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("multipartボディの確定に失敗: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 上流APIの呼び出し時に X-Request-ID ヘッダーとして伝播される。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFrom はコンテキストからリクエストIDを取り出す。
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

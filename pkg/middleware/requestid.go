package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/memo-web/pkg/httpclient"
)

// HeaderKeyRequestID はリクエストIDを運ぶHTTPヘッダーキー。
const HeaderKeyRequestID = "X-Request-ID"

// contextKeyRequestID はGinコンテキストにリクエストIDを格納するキー。
const contextKeyRequestID = "request_id"

// RequestID はリクエストごとにIDを割り当てるGinミドルウェアを返す。
// X-Request-ID ヘッダーがあればそれを使い、無ければUUIDを生成する。
// IDはレスポンスヘッダーに返し、上流API呼び出しへ伝播できるよう
// リクエストのcontext.Contextにも設定する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderKeyRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderKeyRequestID, id)
		c.Request = c.Request.WithContext(httpclient.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
// RequestIDミドルウェアが適用されていない場合は空文字列を返す。
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(contextKeyRequestID)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}

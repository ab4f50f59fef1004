package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// recoveryMessage はパニック発生時に利用者へ返すメッセージ。
const recoveryMessage = "内部サーバーエラーが発生しました"

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にリクエストIDとともにログへ出力し、500のプレーンテキストを返す。
// 画面描画の途中でパニックした場合も、プロセスは次のリクエストを処理し続ける。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] request_id=%s %s %s: %v", GetRequestID(c), c.Request.Method, c.Request.URL.Path, r)
				c.Abort()
				c.String(http.StatusInternalServerError, recoveryMessage)
			}
		}()
		c.Next()
	}
}

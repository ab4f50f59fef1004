package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// flashCookie はリダイレクト先に渡すメッセージを保持するクッキー名。
const flashCookie = "flash"

const (
	levelSuccess = "success"
	levelError   = "error"
)

// message は画面に表示するメッセージ。
type message struct {
	// Level は "success" または "error"。
	Level string
	// Text は表示する文言。
	Text string
}

func errorMessage(text string) message {
	return message{Level: levelError, Text: text}
}

func successMessage(text string) message {
	return message{Level: levelSuccess, Text: text}
}

// setFlash はリダイレクト後の画面で表示するメッセージをクッキーに保存する。
func setFlash(c *gin.Context, m message) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(m.Level + ":" + m.Text),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash はクッキーのメッセージを取り出し、クッキーを削除する。
func popFlash(c *gin.Context) (message, bool) {
	cookie, err := c.Request.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return message{}, false
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return message{}, false
	}
	level, text, found := strings.Cut(raw, ":")
	if !found || text == "" {
		return message{}, false
	}
	if level != levelSuccess {
		level = levelError
	}
	return message{Level: level, Text: text}, true
}

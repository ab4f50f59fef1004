package web

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/nao1215/memo-web/internal/memo"
	"github.com/nao1215/memo-web/internal/session"
	"github.com/nao1215/memo-web/pkg/httpclient"
	"github.com/nao1215/memo-web/pkg/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// 画面に表示する共通メッセージ。
const (
	msgConnectionError = "Error connecting to API."
	msgInvalidLogin    = "Invalid username or password."
)

// Server はWebフロントエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// gateway はセッションと上流APIを仲介するゲートウェイ。
	gateway *session.Gateway
	// memos はメモAPIのクライアント。
	memos *memo.Service
	// cookies はセッションクッキーの書き込み設定。
	cookies session.Cookies
}

// NewServer は新しいWebフロントエンドサーバーを生成する。
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.Logger())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	// Recoveryは圧縮より内側に置く
	router.Use(middleware.Recovery())
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = maxPhotoBytes

	gateway := session.NewGateway(httpclient.NewWithTimeout(cfg.APIBaseURL, cfg.UpstreamTimeout))
	s := &Server{
		router:  router,
		port:    cfg.Port,
		gateway: gateway,
		memos:   memo.NewService(gateway),
		cookies: session.Cookies{Secure: cfg.CookieSecure},
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はテストや外部のhttp.Serverから利用するためのハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes は画面のルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証（トークン不要）
	s.router.GET("/login/", s.handleLoginPage())
	s.router.POST("/login/", s.handleLogin())
	s.router.GET("/register/", s.handleRegisterPage())
	s.router.POST("/register/", s.handleRegister())
	s.router.GET("/logout/", s.handleLogout())
	s.router.POST("/logout/", s.handleLogout())

	// メモ（上流APIへ転送）
	s.router.GET("/", s.handleMemoList())
	s.router.GET("/create/", s.handleMemoCreatePage())
	s.router.POST("/create/", s.handleMemoCreate())
	memos := s.router.Group("/memos/:id")
	{
		memos.GET("/edit/", s.handleMemoEditPage())
		memos.POST("/edit/", s.handleMemoUpdate())
		memos.GET("/delete/", s.handleMemoDeletePage())
		memos.POST("/delete/", s.handleMemoDelete())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "memo-web"})
	})
}

// render はフラッシュメッセージとログインユーザー情報を付与してテンプレートを描画する。
func (s *Server) render(c *gin.Context, status int, name string, sess session.Session, data gin.H, msgs ...message) {
	if data == nil {
		data = gin.H{}
	}
	var all []message
	if m, ok := popFlash(c); ok {
		all = append(all, m)
	}
	all = append(all, msgs...)
	data["messages"] = all
	if sess.Authenticated() {
		data["current_user"] = s.gateway.CurrentUser(c.Request.Context(), sess)
	}
	c.HTML(status, name, data)
}

// persistRefreshed はアクセストークンが更新された場合にクッキーへ保存する。
func (s *Server) persistRefreshed(c *gin.Context, sess session.Session, res *session.Result) {
	if res != nil && res.Refreshed {
		s.cookies.PersistAccess(c.Writer, sess.AccessToken)
	}
}

// redirectToLogin はログイン画面へリダイレクトする。
func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login/")
}

// logUpstreamError は上流APIのエラーをリクエストIDとともにログに出力する。
func logUpstreamError(c *gin.Context, err error) {
	log.Printf("上流APIエラー: request_id=%s, %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
}

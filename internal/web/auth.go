package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/memo-web/internal/session"
)

// handleLoginPage はログイン画面を返すハンドラを返す。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.render(c, http.StatusOK, "login.html", session.Session{}, gin.H{"title": "Login"})
	}
}

// handleLogin はユーザー名とパスワードをトークンに交換し、クッキーに保存するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form loginForm
		if err := c.ShouldBind(&form); err != nil {
			// 入力が欠けている場合は上流に問い合わせない
			s.render(c, http.StatusOK, "login.html", session.Session{}, gin.H{
				"title":    "Login",
				"username": form.Username,
			}, errorMessage(msgInvalidLogin))
			return
		}

		sess, err := s.gateway.Authenticate(c.Request.Context(), form.Username, form.Password)
		if err == nil {
			s.cookies.Persist(c.Writer, sess)
			c.Redirect(http.StatusFound, "/")
			return
		}

		msg := msgInvalidLogin
		if errors.Is(err, session.ErrUpstreamUnavailable) {
			logUpstreamError(c, err)
			msg = msgConnectionError
		}
		s.render(c, http.StatusOK, "login.html", session.Session{}, gin.H{
			"title":    "Login",
			"username": form.Username,
		}, errorMessage(msg))
	}
}

// handleRegisterPage はユーザー登録画面を返すハンドラを返す。
func (s *Server) handleRegisterPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.render(c, http.StatusOK, "register.html", session.Session{}, gin.H{"title": "Register"})
	}
}

// handleRegister は上流APIでユーザーを登録するハンドラを返す。
// 登録は上流に委譲し、ローカルにはユーザー情報を保持しない。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form registerForm
		if err := c.ShouldBind(&form); err != nil {
			s.render(c, http.StatusOK, "register.html", session.Session{}, gin.H{
				"title":    "Register",
				"username": form.Username,
				"email":    form.Email,
			}, errorMessage(registerErrorText(err)))
			return
		}

		err := s.gateway.Register(c.Request.Context(), form.Username, form.Password, form.Email)
		if err == nil {
			setFlash(c, successMessage("Registration successful! Please login."))
			redirectToLogin(c)
			return
		}

		msg := "Registration failed"
		var rejectedErr *session.RejectedError
		switch {
		case errors.As(err, &rejectedErr) && rejectedErr.Message != "":
			msg = rejectedErr.Message
		case errors.Is(err, session.ErrUpstreamUnavailable):
			logUpstreamError(c, err)
			msg = msgConnectionError
		}
		s.render(c, http.StatusOK, "register.html", session.Session{}, gin.H{
			"title":    "Register",
			"username": form.Username,
			"email":    form.Email,
		}, errorMessage(msg))
	}
}

// handleLogout は両方のセッションクッキーを削除してログイン画面へ戻すハンドラを返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.cookies.Terminate(c.Writer)
		setFlash(c, successMessage("You have been logged out successfully."))
		redirectToLogin(c)
	}
}

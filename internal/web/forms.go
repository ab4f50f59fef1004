package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// loginForm はログインフォームの入力値。
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// registerForm はユーザー登録フォームの入力値。
type registerForm struct {
	Username string `form:"username" binding:"required,max=150"`
	Password string `form:"password" binding:"required"`
	Email    string `form:"email" binding:"omitempty,email"`
}

// registerErrorText は登録フォームの検証エラーを表示用の文言に変換する。
func registerErrorText(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Registration failed"
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Username":
			if fe.Tag() == "max" {
				return "Username must be 150 characters or fewer."
			}
			return "Please enter a username."
		case "Password":
			return "Please enter a password."
		case "Email":
			return "Please enter a valid email address."
		}
	}
	return "Registration failed"
}

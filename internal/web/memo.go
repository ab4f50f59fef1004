package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/memo-web/internal/memo"
	"github.com/nao1215/memo-web/internal/session"
	"github.com/nao1215/memo-web/pkg/httpclient"
)

// maxPhotoBytes は添付画像の最大サイズ。
const maxPhotoBytes = 8 << 20

var errPhotoTooLarge = errors.New("添付画像が大きすぎます")

// handleMemoList はメモ一覧画面を返すハンドラを返す。
func (s *Server) handleMemoList() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromRequest(c.Request)

		memos, res, err := s.memos.List(c.Request.Context(), &sess)
		if errors.Is(err, session.ErrUnauthenticated) {
			redirectToLogin(c)
			return
		}

		var msgs []message
		if err != nil {
			logUpstreamError(c, err)
			memos = []memo.Memo{}
			msgs = append(msgs, errorMessage(failureText(err, "Error loading notes.")))
		}
		s.persistRefreshed(c, sess, res)
		s.render(c, http.StatusOK, "memo_list.html", sess, gin.H{
			"title": "Notes",
			"memos": memos,
		}, msgs...)
	}
}

// handleMemoCreatePage はメモ作成画面を返すハンドラを返す。
func (s *Server) handleMemoCreatePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromRequest(c.Request)
		if !sess.Authenticated() {
			redirectToLogin(c)
			return
		}
		s.render(c, http.StatusOK, "memo_form.html", sess, gin.H{"title": "New note"})
	}
}

// handleMemoCreate はメモを作成するハンドラを返す。
// 失敗した場合は入力内容を残したままフォームを再表示する。
func (s *Server) handleMemoCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromRequest(c.Request)
		if !sess.Authenticated() {
			redirectToLogin(c)
			return
		}

		data := gin.H{
			"title":        "New note",
			"form_title":   c.PostForm("title"),
			"form_content": c.PostForm("content"),
		}
		draft, err := draftFromForm(c)
		if err != nil {
			s.render(c, http.StatusOK, "memo_form.html", sess, data, errorMessage(photoErrorText(err)))
			return
		}

		res, err := s.memos.Create(c.Request.Context(), &sess, draft)
		if errors.Is(err, session.ErrUnauthenticated) {
			redirectToLogin(c)
			return
		}
		s.persistRefreshed(c, sess, res)
		if err != nil {
			logUpstreamError(c, err)
			s.render(c, http.StatusOK, "memo_form.html", sess, data, errorMessage(failureText(err, "Error creating note. Please try again.")))
			return
		}

		setFlash(c, successMessage("Note created successfully!"))
		c.Redirect(http.StatusFound, "/")
	}
}

// handleMemoEditPage はメモ編集画面を返すハンドラを返す。
func (s *Server) handleMemoEditPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := memoID(c)
		if !ok {
			return
		}
		sess := session.FromRequest(c.Request)

		m, status, msgs, ok := s.loadMemo(c, &sess, id)
		if !ok {
			return
		}
		data := gin.H{"title": "Edit note", "memo_id": id, "memo": m}
		if m != nil {
			data["form_title"] = m.Title
			data["form_content"] = m.Content
			data["form_photo"] = m.Photo
		}
		s.render(c, status, "memo_form.html", sess, data, msgs...)
	}
}

// handleMemoUpdate はメモを更新するハンドラを返す。
func (s *Server) handleMemoUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := memoID(c)
		if !ok {
			return
		}
		sess := session.FromRequest(c.Request)
		if !sess.Authenticated() {
			redirectToLogin(c)
			return
		}

		data := gin.H{
			"title":        "Edit note",
			"memo_id":      id,
			"form_title":   c.PostForm("title"),
			"form_content": c.PostForm("content"),
		}
		draft, err := draftFromForm(c)
		if err != nil {
			s.render(c, http.StatusOK, "memo_form.html", sess, data, errorMessage(photoErrorText(err)))
			return
		}

		res, err := s.memos.Update(c.Request.Context(), &sess, id, draft)
		if errors.Is(err, session.ErrUnauthenticated) {
			redirectToLogin(c)
			return
		}
		s.persistRefreshed(c, sess, res)
		if err != nil {
			logUpstreamError(c, err)
			s.render(c, http.StatusOK, "memo_form.html", sess, data, errorMessage(failureText(err, "Error updating note. Please try again.")))
			return
		}

		setFlash(c, successMessage("Note updated successfully!"))
		c.Redirect(http.StatusFound, "/")
	}
}

// handleMemoDeletePage はメモ削除の確認画面を返すハンドラを返す。
func (s *Server) handleMemoDeletePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := memoID(c)
		if !ok {
			return
		}
		sess := session.FromRequest(c.Request)

		m, status, msgs, ok := s.loadMemo(c, &sess, id)
		if !ok {
			return
		}
		s.render(c, status, "memo_confirm_delete.html", sess, gin.H{
			"title":   "Delete note",
			"memo_id": id,
			"memo":    m,
		}, msgs...)
	}
}

// handleMemoDelete はメモを削除するハンドラを返す。
func (s *Server) handleMemoDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := memoID(c)
		if !ok {
			return
		}
		sess := session.FromRequest(c.Request)

		res, err := s.memos.Delete(c.Request.Context(), &sess, id)
		if errors.Is(err, session.ErrUnauthenticated) {
			redirectToLogin(c)
			return
		}
		s.persistRefreshed(c, sess, res)
		if err != nil {
			logUpstreamError(c, err)
			s.render(c, http.StatusOK, "memo_confirm_delete.html", sess, gin.H{
				"title":   "Delete note",
				"memo_id": id,
			}, errorMessage(failureText(err, "Error deleting note. Please try again.")))
			return
		}

		setFlash(c, successMessage("Note deleted successfully!"))
		c.Redirect(http.StatusFound, "/")
	}
}

// loadMemo は編集・削除画面に表示するメモを取得する。
// 未認証の場合はログイン画面へリダイレクトし、okにfalseを返す。
func (s *Server) loadMemo(c *gin.Context, sess *session.Session, id int) (*memo.Memo, int, []message, bool) {
	m, res, err := s.memos.Get(c.Request.Context(), sess, id)
	if errors.Is(err, session.ErrUnauthenticated) {
		redirectToLogin(c)
		return nil, 0, nil, false
	}
	s.persistRefreshed(c, *sess, res)
	if err == nil {
		return m, http.StatusOK, nil, true
	}

	logUpstreamError(c, err)
	var rejectedErr *session.RejectedError
	if errors.As(err, &rejectedErr) && rejectedErr.StatusCode == http.StatusNotFound {
		return nil, http.StatusNotFound, []message{errorMessage("Note not found.")}, true
	}
	return nil, http.StatusOK, []message{errorMessage(failureText(err, "Error loading note."))}, true
}

// memoID はURLパラメータのメモIDを解釈する。整数でない場合は404を返す。
func memoID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.String(http.StatusNotFound, "404 page not found")
		return 0, false
	}
	return id, true
}

// draftFromForm はフォームの入力値と任意の添付画像からDraftを組み立てる。
func draftFromForm(c *gin.Context) (memo.Draft, error) {
	d := memo.Draft{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}

	header, err := c.FormFile("photo")
	if err != nil {
		// 画像は任意
		return d, nil
	}
	if header.Size > maxPhotoBytes {
		return d, errPhotoTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return d, fmt.Errorf("添付画像を開けません: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return d, fmt.Errorf("添付画像の読み込みに失敗: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return d, errPhotoTooLarge
	}

	d.Photo = &httpclient.File{
		Field:       "photo",
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return d, nil
}

func photoErrorText(err error) string {
	if errors.Is(err, errPhotoTooLarge) {
		return "Photo is too large."
	}
	return "Could not read photo."
}

// failureText はエラーの種類に応じて表示する文言を選ぶ。
func failureText(err error, rejected string) string {
	if errors.Is(err, session.ErrUpstreamUnavailable) {
		return msgConnectionError
	}
	return rejected
}

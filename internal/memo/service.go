// Package memo は上流APIのメモリソースに対するCRUD操作を提供する。
// メモのデータは一切保持せず、すべての操作を session.Gateway 経由で転送する。
package memo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nao1215/memo-web/internal/session"
	"github.com/nao1215/memo-web/pkg/httpclient"
)

// memosPath はメモ一覧・作成APIのパス。
const memosPath = "/api/memos/"

// Memo は上流APIが返すメモ。
type Memo struct {
	// ID はメモの識別子。
	ID int `json:"id"`
	// Title はメモのタイトル。
	Title string `json:"title"`
	// Content はメモの本文。
	Content string `json:"content"`
	// Photo は添付画像のURL。無い場合は空文字列。
	Photo string `json:"photo"`
}

// Draft はメモの作成・更新フォームの入力値。
type Draft struct {
	// Title はメモのタイトル。
	Title string
	// Content はメモの本文。
	Content string
	// Photo は任意の添付画像。
	Photo *httpclient.File
}

func (d Draft) form() url.Values {
	return url.Values{"title": {d.Title}, "content": {d.Content}}
}

// Service はメモAPIの呼び出しを行う。
type Service struct {
	// gateway は上流APIへの転送を行うゲートウェイ。
	gateway *session.Gateway
}

// NewService は新しいServiceを生成する。
func NewService(gateway *session.Gateway) *Service {
	return &Service{gateway: gateway}
}

// memoPath は個別メモのパスを返す。
func memoPath(id int) string {
	return fmt.Sprintf("%s%d/", memosPath, id)
}

// List はメモ一覧を取得する。レスポンスが配列として解釈できない場合は空の一覧を返す。
func (s *Service) List(ctx context.Context, sess *session.Session) ([]Memo, *session.Result, error) {
	res, err := s.gateway.Forward(ctx, sess, session.Call{Method: http.MethodGet, Path: memosPath})
	if err != nil {
		return nil, nil, fmt.Errorf("メモ一覧の取得に失敗: %w", err)
	}
	var memos []Memo
	if err := json.Unmarshal(res.Body, &memos); err != nil {
		memos = []Memo{}
	}
	return memos, res, nil
}

// Get は指定IDのメモを取得する。存在しない場合は *session.RejectedError（404）を返す。
func (s *Service) Get(ctx context.Context, sess *session.Session, id int) (*Memo, *session.Result, error) {
	res, err := s.gateway.Forward(ctx, sess, session.Call{Method: http.MethodGet, Path: memoPath(id)})
	if err != nil {
		return nil, nil, fmt.Errorf("メモの取得に失敗: id=%d: %w", id, err)
	}
	var m Memo
	if err := json.Unmarshal(res.Body, &m); err != nil {
		return nil, res, fmt.Errorf("メモのデシリアライズに失敗: id=%d: %w", id, err)
	}
	return &m, res, nil
}

// Create はメモを作成する。上流APIが201以外の2xxを返した場合も拒否として扱う。
func (s *Service) Create(ctx context.Context, sess *session.Session, d Draft) (*session.Result, error) {
	res, err := s.gateway.Forward(ctx, sess, session.Call{
		Method:     http.MethodPost,
		Path:       memosPath,
		Form:       d.form(),
		Attachment: d.Photo,
	})
	if err != nil {
		return nil, fmt.Errorf("メモの作成に失敗: %w", err)
	}
	if res.StatusCode != http.StatusCreated {
		return res, fmt.Errorf("メモの作成に失敗: %w", &session.RejectedError{StatusCode: res.StatusCode, Body: res.Body})
	}
	return res, nil
}

// Update はメモを更新する。
// 画像がある場合はmultipartのPUTで置き換え、無い場合はPATCHで既存の画像を残す。
func (s *Service) Update(ctx context.Context, sess *session.Session, id int, d Draft) (*session.Result, error) {
	method := http.MethodPatch
	if d.Photo != nil {
		method = http.MethodPut
	}
	res, err := s.gateway.Forward(ctx, sess, session.Call{
		Method:     method,
		Path:       memoPath(id),
		Form:       d.form(),
		Attachment: d.Photo,
	})
	if err != nil {
		return nil, fmt.Errorf("メモの更新に失敗: id=%d: %w", id, err)
	}
	if !okOrNoContent(res.StatusCode) {
		return res, fmt.Errorf("メモの更新に失敗: id=%d: %w", id, &session.RejectedError{StatusCode: res.StatusCode, Body: res.Body})
	}
	return res, nil
}

// Delete はメモを削除する。
func (s *Service) Delete(ctx context.Context, sess *session.Session, id int) (*session.Result, error) {
	res, err := s.gateway.Forward(ctx, sess, session.Call{Method: http.MethodDelete, Path: memoPath(id)})
	if err != nil {
		return nil, fmt.Errorf("メモの削除に失敗: id=%d: %w", id, err)
	}
	if !okOrNoContent(res.StatusCode) {
		return res, fmt.Errorf("メモの削除に失敗: id=%d: %w", id, &session.RejectedError{StatusCode: res.StatusCode, Body: res.Body})
	}
	return res, nil
}

func okOrNoContent(status int) bool {
	return status == http.StatusOK || status == http.StatusNoContent
}

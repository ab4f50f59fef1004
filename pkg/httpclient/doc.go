// Package httpclient は上流REST APIとの通信を行うHTTPクライアントを提供する。
//
// フォーム（urlencoded / multipart）でのリクエスト送信、Bearerトークンの付与、
// リクエストIDの伝播を行う。ステータスコードの解釈は呼び出し側に委ね、
// 通信障害のみをエラーとして返す。
package httpclient

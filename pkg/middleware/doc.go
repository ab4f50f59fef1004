// Package middleware はGinベースのWebフロントエンドで使用する共通ミドルウェアを提供する。
//
// パニックリカバリと、上流APIまで伝播するリクエストIDの付与を含む。
package middleware

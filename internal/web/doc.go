// Package web はメモ管理のWebフロントエンドの内部実装を提供する。
//
// ログイン・登録・ログアウトと、メモの一覧・作成・編集・削除の画面を
// サーバーサイドで描画する。データは保持せず、すべての操作を
// session.Gateway を通じて上流REST APIに転送する。トークンはクッキーで保持し、
// 上流が401を返した場合の更新結果もクッキーに反映する。
package web

// メモWebフロントエンドのエントリポイント。
// ブラウザのセッションクッキーを上流REST APIのJWTに変換し、メモ操作を転送する。
// データは一切保持せず、上流APIが唯一の情報源となる。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/nao1215/memo-web/internal/web"
)

func main() {
	// .env があれば環境変数として読み込む。既に設定済みの値は上書きしない
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf(".envの読み込みに失敗: %v", err)
		}
	}

	cfg, err := web.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := web.NewServer(cfg)
	if err != nil {
		log.Fatalf("Webサーバーの初期化に失敗: %v", err)
	}

	log.Printf("Webフロントエンドを起動します: :%s (API: %s)", cfg.Port, cfg.APIBaseURL)
	if err := server.Run(); err != nil {
		log.Fatalf("Webフロントエンドの起動に失敗: %v", err)
	}
}

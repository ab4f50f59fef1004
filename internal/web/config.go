package web

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/nao1215/memo-web/pkg/httpclient"
)

// Config は環境変数から読み込むWebフロントエンドの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// APIBaseURL は上流REST APIのベースURL。
	APIBaseURL string
	// UpstreamTimeout は上流API呼び出し1回あたりのタイムアウト。
	UpstreamTimeout time.Duration
	// CookieSecure はセッションクッキーにSecure属性を付けるかどうか。
	CookieSecure bool
}

// LoadConfig は環境変数を読み込み、既定値を適用して検証する。
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:            getEnvOr("PORT", "8000"),
		APIBaseURL:      getEnvOr("API_BASE_URL", "http://127.0.0.1:8001"),
		UpstreamTimeout: httpclient.DefaultTimeout,
		CookieSecure:    isTruthy(os.Getenv("COOKIE_SECURE")),
	}
	if raw := strings.TrimSpace(os.Getenv("UPSTREAM_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("UPSTREAM_TIMEOUT は正の時間（例: 5s）で指定してください: %q", raw)
		}
		cfg.UpstreamTimeout = d
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate は設定値の整合性を検証する。
func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL が不正です: %q", c.APIBaseURL)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT が空です")
	}
	return nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

package middleware

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"

	"TimedIn/config"
)

// CSRFMiddlewares 浏览器端（日历/仪表盘走 cookie 会话）才需要 CSRF 防护
// 移动端纯 Bearer token 调用不受影响，CSRF_ENABLED=false 时返回空链
func CSRFMiddlewares() []app.HandlerFunc {
	if !config.Cfg.CSRFEnabled {
		return nil
	}

	store := cookie.NewStore([]byte(config.Cfg.SessionSecret))
	return []app.HandlerFunc{
		sessions.New("csrf-session", store),
		csrf.New(
			csrf.WithSecret(config.Cfg.SessionSecret),
		),
	}
}

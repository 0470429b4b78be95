package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "lumiere_session"
	CtxSessionIDKey   = "session_id"

	sessionCookieMaxAge = 30 * 24 * time.Hour
)

// SessionCookie はカート用のセッションIDを用意する。
// 無い・壊れているときは新しいIDを発行してCookieに書く。
func SessionCookie(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					sid = ck.Value
				}
			}

			if sid == "" {
				sid = uuid.NewString()
			}

			//毎回書き直して期限を延ばす
			c.SetCookie(&http.Cookie{
				Name:     SessionCookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(sessionCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

package core

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// setSessionCookie issues the session token cookie with the configured
// hardening options. MaxAge follows the session duration when one is set.
func setSessionCookie(c *gin.Context, cfg Config, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.SessionName,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.SessionDuration,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSiteFromString(cfg.CookieSameSite),
	})
}

// clearSessionCookie removes the session cookie from the client.
func clearSessionCookie(c *gin.Context, cfg Config) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.SessionName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSiteFromString(cfg.CookieSameSite),
	})
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

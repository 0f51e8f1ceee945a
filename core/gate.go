package core

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

// AuthGate is the single checkpoint in front of protected handlers. It
// allows the request through when no real strategy is configured or the path
// is excluded, answers 401 when the client presented neither an
// Authorization header nor a session cookie, 403 when a presented credential
// does not authenticate, and otherwise attaches the resolved Principal to
// the request context.
func AuthGate(cfg Config, strategy AuthStrategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strategy == nil {
			c.Next()
			return
		}
		if _, none := strategy.(NoneAuth); none {
			// No auth configured; everything is allowed through.
			c.Next()
			return
		}

		if strategy.IsExempt(c.Request.URL.Path, cfg.ExcludedPaths) {
			c.Next()
			return
		}

		// Either credential carrier suffices to proceed to validation.
		_, hasHeader := AuthorizationHeader(c.Request)
		_, hasCookie := SessionCookie(c.Request, cfg.SessionName)
		if !hasHeader && !hasCookie {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		principal, err := strategy.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			if errors.Is(err, ErrNoCredential) || errors.Is(err, ErrInvalidCredential) {
				respondError(c, http.StatusForbidden, "Forbidden")
			} else {
				log.Printf("auth gate: %v", err)
				respondError(c, http.StatusInternalServerError, "Internal Server Error")
			}
			c.Abort()
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the Principal the gate attached to the request.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

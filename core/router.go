package core

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs the Gin engine with routes wired. The auth gate runs
// in front of every /api/v1 route; which of them actually demand credentials
// is decided by cfg.ExcludedPaths.
func NewRouter(cfg Config, strategy AuthStrategy, service *AuthService) *gin.Engine {
	r := gin.Default()

	r.Use(CORSMiddleware(cfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(AuthGate(cfg, strategy))
	{
		api.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK"})
		})

		// Canary endpoints for clients to observe the gate's error shapes.
		api.GET("/unauthorized", func(c *gin.Context) {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
		})
		api.GET("/forbidden", func(c *gin.Context) {
			respondError(c, http.StatusForbidden, "Forbidden")
		})

		api.POST("/users", func(c *gin.Context) {
			email := c.PostForm("email")
			password := c.PostForm("password")
			if email == "" || password == "" {
				respondError(c, http.StatusBadRequest, "email or password missing")
				return
			}

			_, err := service.Register(c.Request.Context(), email, password)
			if err != nil {
				if errors.Is(err, ErrEmailTaken) {
					respondError(c, http.StatusBadRequest, "email already registered")
					return
				}
				log.Printf("register: %v", err)
				respondError(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			c.JSON(http.StatusOK, gin.H{"email": email, "message": "user created"})
		})

		api.POST("/auth_session/login", func(c *gin.Context) {
			email := c.PostForm("email")
			password := c.PostForm("password")
			if email == "" || password == "" {
				respondError(c, http.StatusBadRequest, "email or password missing")
				return
			}

			principal, token, err := service.Login(c.Request.Context(), email, password)
			switch {
			case errors.Is(err, ErrUnknownEmail):
				respondError(c, http.StatusNotFound, "no user found for this email")
				return
			case errors.Is(err, ErrWrongPassword):
				respondError(c, http.StatusUnauthorized, "wrong password")
				return
			case err != nil:
				log.Printf("login: %v", err)
				respondError(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			setSessionCookie(c, cfg, token)
			c.JSON(http.StatusOK, principal)
		})

		api.DELETE("/auth_session/logout", func(c *gin.Context) {
			token, ok := SessionCookie(c.Request, cfg.SessionName)
			if !ok {
				respondError(c, http.StatusForbidden, "session_id missing")
				return
			}

			destroyed, err := service.Logout(c.Request.Context(), token)
			if err != nil {
				log.Printf("logout: %v", err)
				respondError(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if !destroyed {
				respondError(c, http.StatusForbidden, "session_id unknown")
				return
			}

			clearSessionCookie(c, cfg)
			c.JSON(http.StatusOK, gin.H{})
		})

		api.GET("/users/me", func(c *gin.Context) {
			principal, ok := PrincipalFrom(c)
			if !ok {
				respondError(c, http.StatusUnauthorized, "Unauthorized")
				return
			}
			c.JSON(http.StatusOK, principal)
		})

		api.POST("/reset_password", func(c *gin.Context) {
			email := c.PostForm("email")
			token, err := service.ResetPasswordToken(c.Request.Context(), email)
			if err != nil {
				if errors.Is(err, ErrUnknownEmail) {
					respondError(c, http.StatusForbidden, "Forbidden")
					return
				}
				log.Printf("reset password token: %v", err)
				respondError(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			c.JSON(http.StatusOK, gin.H{"email": email, "reset_token": token})
		})

		api.PUT("/reset_password", func(c *gin.Context) {
			email := c.PostForm("email")
			resetToken := c.PostForm("reset_token")
			newPassword := c.PostForm("new_password")
			if resetToken == "" || newPassword == "" {
				respondError(c, http.StatusForbidden, "Forbidden")
				return
			}

			if err := service.UpdatePassword(c.Request.Context(), resetToken, newPassword); err != nil {
				if errors.Is(err, ErrInvalidResetToken) {
					respondError(c, http.StatusForbidden, "Forbidden")
					return
				}
				log.Printf("update password: %v", err)
				respondError(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			c.JSON(http.StatusOK, gin.H{"email": email, "message": "Password updated"})
		})
	}

	return r
}

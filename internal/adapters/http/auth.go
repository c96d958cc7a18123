package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fastlab/regain-api/internal/infrastructure/config"
	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

// AuthHandler issues magic-link tokens. This is a local development
// stand-in: instead of emailing the link, the callback URL is written to
// the server console for the developer to follow. Token verification
// happens in the web app's session layer, not here.
type AuthHandler struct {
	store *datastore.Store
	cfg   config.AuthConfig
	log   *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store *datastore.Store, cfg config.AuthConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg, log: log.WithComponent("auth")}
}

// Register mounts the auth routes.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/magicLink/authorize", h.Authorize)
}

// Authorize builds a short-lived HS256 token for the given email and logs
// the callback URL embedding it. An unknown email still gets a token,
// carrying a freshly generated user id.
func (h *AuthHandler) Authorize(c echo.Context) error {
	email := c.QueryParam("email")

	doc, err := h.store.Load()
	if err != nil {
		return err
	}

	userID := uuid.NewString()
	for _, user := range doc.Users {
		if datastore.StringField(user, "email") == email {
			userID = datastore.StringField(user, "id")
			break
		}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"iat":    now.Unix(),
		"exp":    now.Add(h.cfg.TokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(h.cfg.Secret))
	if err != nil {
		return fmt.Errorf("sign magic-link token: %w", err)
	}

	callbackURL := fmt.Sprintf("%s?token=%s", h.cfg.CallbackURL, signed)
	h.log.Infow("magic link issued", "email", email, "callback_url", callbackURL)

	return c.JSON(http.StatusOK, map[string]string{
		"message":     "Magic link logged to console",
		"callbackUrl": callbackURL,
	})
}

// Package auth guards the API behind the single shared site password.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CookieName = "auth"
	cookieTTL  = 7 * 24 * time.Hour
)

type Gate struct {
	token  string
	secure bool
	logger logger.ZapLogger
}

// NewGate builds a gate for password. Secure cookies are issued when secure is
// set, which is what production runs with.
func NewGate(password string, secure bool, log logger.ZapLogger) *Gate {
	return &Gate{token: tokenFor(password), secure: secure, logger: log}
}

// tokenFor derives the cookie value so the password itself never sits in a
// browser.
func tokenFor(password string) string {
	sum := sha256.Sum256([]byte("stockroom:" + password))
	return hex.EncodeToString(sum[:])
}

func (g *Gate) valid(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(g.token)) == 1
}

func (g *Gate) RegisterRoutes(r fiber.Router) {
	r.Post("/login", g.Login)
	r.Post("/logout", g.Logout)
}

type loginInput struct {
	Password string `json:"password"`
}

func (g *Gate) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	token := tokenFor(input.Password)
	if !g.valid(token) {
		g.logger.Warn("rejected login", zap.String("ip", c.IP()))
		return response.Fail(c, fiber.StatusUnauthorized, "Invalid password")
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return response.SuccessMessage(c, "Logged in", nil)
}

func (g *Gate) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return response.SuccessMessage(c, "Logged out", nil)
}

// Middleware rejects requests that do not carry a valid auth cookie. Routes
// registered before it stay public.
func (g *Gate) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !g.valid(c.Cookies(CookieName)) {
			return response.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}

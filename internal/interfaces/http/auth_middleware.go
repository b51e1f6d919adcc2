package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/auth"
	"github.com/jhoicas/Tienda-api/internal/domain"
)

// LocalIdentity clave de c.Locals con el *auth.Identity autenticado.
const LocalIdentity = "identity"

// SessionGuard autenticación y autorización. Lo implementa *auth.Guard.
type SessionGuard interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
	Authorize(id *auth.Identity, roles ...string) error
}

// AuthMiddleware toma el token de "Authorization: Bearer" o, si falta, de la cookie "token".
func AuthMiddleware(guard SessionGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := guard.Authenticate(c.UserContext(), extractToken(c))
		if err != nil {
			return err
		}
		c.Locals(LocalIdentity, id)
		return c.Next()
	}
}

// RequireRole autoriza por rol. Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(guard SessionGuard, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := guard.Authorize(GetIdentity(c), roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if t := strings.TrimSpace(parts[1]); t != "" {
				return t
			}
		}
	}
	if t := c.Cookies(cookieToken); t != "" && t != cookieCleared {
		return t
	}
	return ""
}

// GetIdentity devuelve la identidad del contexto (nil si no pasó por AuthMiddleware).
func GetIdentity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(LocalIdentity).(*auth.Identity)
	return id
}

// mustIdentity para handlers montados bajo AuthMiddleware.
func mustIdentity(c *fiber.Ctx) (*auth.Identity, error) {
	id := GetIdentity(c)
	if id == nil {
		return nil, domain.ErrUnauthorized
	}
	return id, nil
}

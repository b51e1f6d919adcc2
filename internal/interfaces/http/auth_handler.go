package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tienda-api/internal/application/auth"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
)

const (
	cookieToken   = "token"
	cookieRefresh = "refreshToken"
	// cookieCleared valor que deja logout en ambas cookies.
	cookieCleared = "none"
)

// CookieConfig duración y flags de las cookies de sesión.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthHandler registro, login, refresco y perfil propio.
type AuthHandler struct {
	uc      *auth.AuthUseCase
	cookies CookieConfig
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{uc: uc, cookies: cookies}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "name, email, password"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.setSession(c, out)
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.AuthResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.setSession(c, out)
	return c.JSON(dto.OK(out))
}

// Refresh emite un nuevo token de acceso. El refresh token viene de la cookie o del cuerpo.
// POST /api/v1/auth/refreshtoken
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(cookieRefresh)
	if token == "" || token == cookieCleared {
		var in dto.RefreshRequest
		_ = c.BodyParser(&in)
		token = in.RefreshToken
	}
	if token == "" {
		return domain.ErrUnauthorized
	}
	out, err := h.uc.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	h.setSession(c, out)
	return c.JSON(dto.OK(out))
}

// Logout sobrescribe ambas cookies con "none" por 10 segundos.
// GET /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	exp := time.Now().Add(10 * time.Second)
	for _, name := range []string{cookieToken, cookieRefresh} {
		c.Cookie(&fiber.Cookie{
			Name: name, Value: cookieCleared, Expires: exp,
			HTTPOnly: true, Secure: h.cookies.Secure, SameSite: fiber.CookieSameSiteLaxMode, Path: "/",
		})
	}
	return c.JSON(dto.Envelope{Success: true, Message: "sesión cerrada"})
}

// Me devuelve el usuario autenticado.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Me(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// UpdateDetails cambia nombre y/o email.
// PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var in dto.UpdateDetailsRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateDetails(c.UserContext(), id.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(out))
}

// UpdatePassword verifica la contraseña actual y reemite los tokens.
// PUT /api/v1/auth/updatepassword
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var in dto.UpdatePasswordRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdatePassword(c.UserContext(), id.UserID, in)
	if err != nil {
		return err
	}
	h.setSession(c, out)
	return c.JSON(dto.OK(out))
}

// setSession escribe la cookie de acceso y, si se emitió, la de refresco.
func (h *AuthHandler) setSession(c *fiber.Ctx, out *dto.AuthResponse) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name: cookieToken, Value: out.Token, Expires: now.Add(h.cookies.AccessTTL),
		HTTPOnly: true, Secure: h.cookies.Secure, SameSite: fiber.CookieSameSiteLaxMode, Path: "/",
	})
	if out.RefreshToken != "" {
		c.Cookie(&fiber.Cookie{
			Name: cookieRefresh, Value: out.RefreshToken, Expires: now.Add(h.cookies.RefreshTTL),
			HTTPOnly: true, Secure: h.cookies.Secure, SameSite: fiber.CookieSameSiteLaxMode, Path: "/",
		})
	}
}

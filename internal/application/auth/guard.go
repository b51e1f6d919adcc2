package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/jhoicas/Tienda-api/pkg/jwt"
)

// Identity usuario autenticado de la petición en curso.
type Identity struct {
	UserID int64
	Role   string
	Name   string
	Email  string
}

// Guard verifica tokens de acceso y aplica control de acceso por rol.
// Autenticación y autorización son pasos separados.
type Guard struct {
	userRepo     repository.UserRepository
	accessSecret string
}

// NewGuard construye el guard con el secreto del token de acceso.
func NewGuard(userRepo repository.UserRepository, accessSecret string) *Guard {
	return &Guard{userRepo: userRepo, accessSecret: accessSecret}
}

// Authenticate valida firma y expiración, y vuelve a leer el usuario de la DB.
// El rol efectivo es el persistido, no el del token.
func (g *Guard) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token requerido", domain.ErrUnauthorized)
	}
	claims, err := jwt.Parse(g.accessSecret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, fmt.Errorf("%w: token expirado", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: token inválido", domain.ErrUnauthorized)
	}
	user, err := g.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &Identity{UserID: user.ID, Role: user.Role, Name: user.Name, Email: user.Email}, nil
}

// Authorize comprueba que la identidad tenga alguno de los roles indicados.
func (g *Guard) Authorize(id *Identity, roles ...string) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if !slices.Contains(roles, id.Role) {
		return domain.ErrForbidden
	}
	return nil
}

package auth

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/testutil/memstore"
	"github.com/jhoicas/Tienda-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_TokenValido(t *testing.T) {
	st := memstore.New()
	id := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	g := NewGuard(st.Users(), "s")

	tok, err := jwt.Generate("s", id, entity.RoleUser, "", time.Minute)
	require.NoError(t, err)

	ident, err := g.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, id, ident.UserID)
	assert.Equal(t, "Ann", ident.Name)
	assert.Equal(t, entity.RoleUser, ident.Role)
}

func TestAuthenticate_RolSaleDeLaDB(t *testing.T) {
	st := memstore.New()
	id := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	g := NewGuard(st.Users(), "s")

	// token emitido con rol admin, pero el usuario persistido es "user"
	tok, err := jwt.Generate("s", id, entity.RoleAdmin, "", time.Minute)
	require.NoError(t, err)

	ident, err := g.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Authorize(ident, entity.RoleAdmin), domain.ErrForbidden)
}

func TestAuthenticate_ExpiradoConFirmaCorrecta(t *testing.T) {
	st := memstore.New()
	id := st.SeedUser("Ann", "ann@example.com", entity.RoleUser, "x")
	g := NewGuard(st.Users(), "s")

	past := time.Now().Add(-time.Hour)
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(past),
			ExpiresAt: gojwt.NewNumericDate(past.Add(time.Minute)),
		},
		UserID: id,
		Role:   entity.RoleUser,
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = g.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "expirado")
}

func TestAuthenticate_Fallos(t *testing.T) {
	st := memstore.New()
	g := NewGuard(st.Users(), "s")
	ctx := context.Background()

	_, err := g.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = g.Authenticate(ctx, "no.es.jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other, err := jwt.Generate("otro", 1, entity.RoleUser, "", time.Minute)
	require.NoError(t, err)
	_, err = g.Authenticate(ctx, other)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	ghost, err := jwt.Generate("s", 404, entity.RoleUser, "", time.Minute)
	require.NoError(t, err)
	_, err = g.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthorize(t *testing.T) {
	g := NewGuard(nil, "s")
	admin := &Identity{UserID: 1, Role: entity.RoleAdmin}
	user := &Identity{UserID: 2, Role: entity.RoleUser}

	assert.NoError(t, g.Authorize(admin, entity.RoleAdmin))
	assert.NoError(t, g.Authorize(user, entity.RoleUser, entity.RoleAdmin))
	assert.ErrorIs(t, g.Authorize(user, entity.RoleAdmin), domain.ErrForbidden)
	assert.ErrorIs(t, g.Authorize(nil, entity.RoleAdmin), domain.ErrUnauthorized)
}

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/jhoicas/Tienda-api/pkg/jwt"
	"github.com/jhoicas/Tienda-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Config configuración para generación de tokens y hashing.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	BcryptCost    int // 0 = bcrypt.DefaultCost
}

// AuthUseCase casos de uso de autenticación: registro, login, refresco y perfil propio.
type AuthUseCase struct {
	userRepo repository.UserRepository
	cfg      Config
	log      logger.Recorder
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, cfg Config, log logger.Recorder) *AuthUseCase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{userRepo: userRepo, cfg: cfg, log: log}
}

// Register crea un usuario con rol "user", hashea el password con bcrypt y emite ambos tokens.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleUser,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Log("info", "usuario registrado", map[string]any{"user_id": user.ID, "email": user.Email})
	return uc.issue(user, true)
}

// Login verifica email/password y emite token de acceso y de refresco.
// Email inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.log.Log("warn", "login fallido", map[string]any{"email": in.Email, "reason": "email"})
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Log("warn", "login fallido", map[string]any{"user_id": user.ID, "reason": "password"})
		return nil, domain.ErrInvalidCredentials
	}
	uc.log.Log("info", "login", map[string]any{"user_id": user.ID})
	return uc.issue(user, true)
}

// Refresh valida el refresh token con su propio secreto y emite solo un token de acceso nuevo.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := jwt.Parse(uc.cfg.RefreshSecret, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token inválido", domain.ErrUnauthorized)
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.issue(user, false)
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// UpdateDetails cambia nombre y/o email. El email nuevo no puede pertenecer a otro usuario.
func (uc *AuthUseCase) UpdateDetails(ctx context.Context, userID int64, in dto.UpdateDetailsRequest) (*dto.UserResponse, error) {
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			other, err := uc.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if err := uc.userRepo.UpdateDetails(ctx, user.ID, user.Name, user.Email); err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// UpdatePassword exige el password actual y emite tokens nuevos.
func (uc *AuthUseCase) UpdatePassword(ctx context.Context, userID int64, in dto.UpdatePasswordRequest) (*dto.AuthResponse, error) {
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		uc.log.Log("warn", "cambio de password rechazado", map[string]any{"user_id": user.ID})
		return nil, domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), uc.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := uc.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	uc.log.Log("info", "password actualizado", map[string]any{"user_id": user.ID})
	return uc.issue(user, true)
}

func (uc *AuthUseCase) mustGet(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *AuthUseCase) issue(user *entity.User, withRefresh bool) (*dto.AuthResponse, error) {
	access, err := jwt.Generate(uc.cfg.AccessSecret, user.ID, user.Role, uc.cfg.Issuer, uc.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	out := &dto.AuthResponse{Token: access, User: dto.NewUserResponse(user)}
	if withRefresh {
		refresh, err := jwt.Generate(uc.cfg.RefreshSecret, user.ID, user.Role, uc.cfg.Issuer, uc.cfg.RefreshTTL)
		if err != nil {
			return nil, fmt.Errorf("generar refresh token: %w", err)
		}
		out.RefreshToken = refresh
	}
	return out, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

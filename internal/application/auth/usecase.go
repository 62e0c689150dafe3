// Package auth implementa el login del operador único de la API.
// Las credenciales viven en la configuración (hash bcrypt), no en base de datos.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Costeo-api/internal/application/dto"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase caso de uso de autenticación.
type AuthUseCase struct {
	username     string
	passwordHash string
	jwtCfg       JWTConfig
}

// NewAuthUseCase construye el caso de uso con las credenciales de config.
func NewAuthUseCase(username, passwordHash string, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{username: username, passwordHash: passwordHash, jwtCfg: jwtCfg}
}

// Login verifica usuario/password contra config y genera el JWT.
// Si no hay hash configurado, el login queda deshabilitado (ErrForbidden).
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if uc.passwordHash == "" {
		return nil, domain.ErrForbidden
	}
	if in.Username != uc.username {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.passwordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.username, "operador", uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token}, nil
}

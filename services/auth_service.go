package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// AuthService, access token doğrulamasını yapar.
// Token üretimi bu servisin dışındadır (hesap servisi imzalar);
// burada yalnızca aynı secret ile doğrulama yapılır.
type AuthService interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

type authService struct {
	jwtSecret string
}

// NewAuthService, yeni bir AuthService oluşturur.
func NewAuthService(jwtSecret string) AuthService {
	return &authService{jwtSecret: jwtSecret}
}

// ValidateAccessToken, JWT'yi doğrular ve claim'leri döner.
// İmza algoritması HMAC ailesiyle sınırlıdır; alg değişikliği
// (ör. "none" saldırısı) reddedilir.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, pkg.ErrUnauthorized
	}

	if claims.UserID == "" {
		return nil, pkg.ErrUnauthorized
	}

	return claims, nil
}

// Package middleware, HTTP request pipeline'ına eklenen ara katmanları
// barındırır. Auth → Handler zinciri: token geçersizse next hiç
// çağrılmaz, request 401 ile durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/logit-app/rtc/handlers"
	"github.com/logit-app/rtc/pkg"
	"github.com/logit-app/rtc/repository"
	"github.com/logit-app/rtc/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require, JWT token zorunlu kılan middleware.
//
// Header formatı: Authorization: Bearer <token>
// Token geçerliyse kullanıcı DB'den getirilir (token geçerli ama hesap
// silinmiş olabilir) ve context'e eklenir; handler'lar
// r.Context().Value(handlers.UserContextKey) ile erişir.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

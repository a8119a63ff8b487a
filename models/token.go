package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token'ın içindeki veriler (payload).
//
// Token üretimi platformun auth servisinde yapılır; bu çekirdek aynı HMAC
// secret ile sadece doğrular. Struct models paketinde tanımlanır çünkü
// birden fazla katman (services, ws, middleware) tarafından kullanılır —
// her katman models'e bağımlı olabilir, circular dependency oluşmaz.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

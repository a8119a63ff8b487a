// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'lar "ince" olmalıdır:
// - Request parse et
// - Service çağır
// - Response yaz
//
// İş mantığı service katmanındadır; handler sadece HTTP köprüsüdür.
package handlers

// contextKey, context value çakışmalarını önlemek için package-private tip.
type contextKey string

// UserContextKey, auth middleware'ın context'e koyduğu *models.User anahtarı.
const UserContextKey contextKey = "user"

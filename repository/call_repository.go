// Package repository, kalıcı veri erişimini soyutlar.
//
// Her domain için iki dosya: interface (bu dosya gibi) + sqlite_*.go
// implementasyonu. Service katmanı sadece interface'i görür — testlerde
// mock, production'da SQLite geçilir.
package repository

import (
	"context"

	"github.com/logit-app/rtc/models"
)

// CallRepository, arama kaydı (call log) ve audit event veritabanı
// işlemleri için interface.
//
// Call işlemleri:
//   - Create: Yeni arama kaydı + katılımcı satırları (tek transaction)
//   - GetByID: Katılımcılar dahil tek kayıt
//   - Update: Kaydın end/status/duration alanlarını yaz
//   - History: Kullanıcının arama geçmişi, page/limit pagination
//
// Event işlemleri:
//   - CreateEvent: Append-only audit kaydı
//   - ListEvents: Bir aramanın event'leri, zaman sıralı
type CallRepository interface {
	Create(ctx context.Context, call *models.Call) error
	GetByID(ctx context.Context, id string) (*models.Call, error)
	Update(ctx context.Context, call *models.Call) error
	History(ctx context.Context, userID, chatID string, page, limit int) (*models.CallHistoryPage, error)

	CreateEvent(ctx context.Context, event *models.CallEvent) error
	ListEvents(ctx context.Context, callID string) ([]models.CallEvent, error)
}

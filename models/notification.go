package models

import "time"

// NotificationType, bildirim türü. Şimdilik sadece arama kaynaklı türler —
// platformun diğer bildirimleri (yorum, takip vb.) ana serviste üretilir.
type NotificationType string

const (
	NotificationCallEnded  NotificationType = "call_ended"
	NotificationCallMissed NotificationType = "call_missed"
)

// Notification, bir kullanıcıya gösterilecek bildirim kaydı.
//
// Canlı teslimat best-effort'tur: kullanıcı bağlı değilse WS üzerinden
// iletilmez, kuyruklanmaz — sadece DB kaydı kalır ve kullanıcı bir sonraki
// açılışta listeden okur.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	ChatID    *string          `json:"chat_id,omitempty"`
	CallID    *string          `json:"call_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

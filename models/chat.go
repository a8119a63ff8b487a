package models

import "time"

// ChatType, sohbet türü: birebir veya grup.
type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

// Chat, bir sohbetin signaling çekirdeğinde ihtiyaç duyulan minimal
// projeksiyonu. Sohbet CRUD'u platformun ana servisine aittir.
type Chat struct {
	ID        string    `json:"id"`
	Type      ChatType  `json:"type"`
	Name      *string   `json:"name"` // Grup sohbetlerinde dolu
	CreatedAt time.Time `json:"created_at"`
}

// ChatParticipant, sohbet üyeliği — call:end bildirim fan-out'u ve
// display name fallback lookup'ı için kullanılır.
type ChatParticipant struct {
	ChatID      string  `json:"chat_id"`
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
}

// Name, katılımcının gösterilecek ismini döner.
func (p *ChatParticipant) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.Username
}

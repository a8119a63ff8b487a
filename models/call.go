// Package models — Call domain modeli.
//
// Arama yaşam döngüsü:
// - "active": CreateCallLog ile oluşturuldu, görüşme sürüyor
// - "ended":  Taraflardan biri sonlandırdı — kayıt artık immutable
// - "missed": Hiç kabul edilmedi
//
// CallType:
// - "audio": Sadece sesli arama
// - "video": Görüntülü arama (ses + kamera)
//
// Signaling state'i (pending call tablosu vb.) in-memory'dir; buradaki
// Call ve CallEvent ise kalıcı kayıtlardır — arama geçmişi bunlardan okunur.
package models

import "time"

// CallType, arama türünü temsil eden typed constant.
type CallType string

const (
	CallTypeAudio CallType = "audio"
	CallTypeVideo CallType = "video"
)

// CallStatus, kalıcı arama kaydının durumunu temsil eder.
type CallStatus string

const (
	CallStatusActive CallStatus = "active"
	CallStatusEnded  CallStatus = "ended"
	CallStatusMissed CallStatus = "missed"
)

// Call, kalıcı bir arama kaydını temsil eder.
// status = ended olduktan sonra kayıt değiştirilemez.
type Call struct {
	ID           string     `json:"id"`
	Type         CallType   `json:"type"`
	ChatID       string     `json:"chat_id"`
	Participants []string   `json:"participants"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	EndedBy      *string    `json:"ended_by,omitempty"`
	Status       CallStatus `json:"status"`
	Duration     *int64     `json:"duration,omitempty"` // Saniye cinsinden
}

// CallUpdate, arama kaydına uygulanacak partial update.
// Pointer kullanılır — nil ise o alan değiştirilmez.
type CallUpdate struct {
	EndedAt  *time.Time  `json:"ended_at,omitempty"`
	EndedBy  *string     `json:"ended_by,omitempty"`
	Status   *CallStatus `json:"status,omitempty"`
	Duration *int64      `json:"duration,omitempty"`
}

// CallEventType, audit trail'deki event türü.
type CallEventType string

const (
	CallEventStart    CallEventType = "start"
	CallEventEnd      CallEventType = "end"
	CallEventJoin     CallEventType = "join"
	CallEventLeave    CallEventType = "leave"
	CallEventMute     CallEventType = "mute"
	CallEventUnmute   CallEventType = "unmute"
	CallEventVideoOn  CallEventType = "video_on"
	CallEventVideoOff CallEventType = "video_off"
)

// Valid, event türünün bilinen kapalı kümede olup olmadığını döner.
func (t CallEventType) Valid() bool {
	switch t {
	case CallEventStart, CallEventEnd, CallEventJoin, CallEventLeave,
		CallEventMute, CallEventUnmute, CallEventVideoOn, CallEventVideoOff:
		return true
	}
	return false
}

// CallEvent, append-only arama audit kaydı.
// Bu çekirdek tarafından asla güncellenmez veya silinmez.
type CallEvent struct {
	ID        string        `json:"id"`
	CallID    string        `json:"call_id"`
	Type      CallEventType `json:"type"`
	UserID    string        `json:"user_id"`
	Data      *string       `json:"data,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// CallHistoryPage, arama geçmişi pagination sonucu.
type CallHistoryPage struct {
	Calls      []Call `json:"calls"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalCount int    `json:"total_count"`
}

package models

// CreateCallLogRequest, POST /api/calls/log isteği.
// Katılımcı listesi aramayı başlatan client tarafından bildirilir;
// kaydı yazan kullanıcının listede olması zorunludur.
type CreateCallLogRequest struct {
	CallID       string   `json:"call_id"`
	ChatID       string   `json:"chat_id"`
	Type         CallType `json:"type"`
	Participants []string `json:"participants"`
}

// UpdateCallLogRequest, PATCH /api/calls/log/{callId} isteği.
// Tüm alanlar opsiyoneldir; nil olanlar dokunulmadan bırakılır.
type UpdateCallLogRequest struct {
	Status  *CallStatus `json:"status,omitempty"`
	EndedBy *string     `json:"ended_by,omitempty"`
}

// CallEventRequest, POST /api/calls/event isteği.
type CallEventRequest struct {
	CallID string        `json:"call_id"`
	ChatID string        `json:"chat_id"`
	Type   CallEventType `json:"type"`
	Data   *string       `json:"data,omitempty"`
}

// RelayTokenRequest, POST /api/calls/token isteği.
type RelayTokenRequest struct {
	CallID string `json:"call_id"`
	ChatID string `json:"chat_id"`
}

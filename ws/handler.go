package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/logit-app/rtc/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS kontrolü HTTP katmanında yapılıyor; upgrade origin'e bakmaz.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenValidator, WebSocket upgrade sırasında JWT doğrulaması için
// ihtiyaç duyulan minimum yüzey.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// Handler, HTTP isteklerini WebSocket bağlantısına yükseltir.
type Handler struct {
	hub       *Hub
	validator TokenValidator
}

// NewHandler, yeni bir WebSocket handler'ı oluşturur.
func NewHandler(hub *Hub, validator TokenValidator) *Handler {
	return &Handler{hub: hub, validator: validator}
}

// ServeWS, /ws endpoint'ini karşılar.
//
// Tarayıcı WebSocket API'si custom header desteklemediği için token
// query parametresi ile gelir: /ws?token=<jwt>. Doğrulama upgrade'den
// ÖNCE yapılır; geçersiz token HTTP 401 ile reddedilir.
//
// Başarılı bağlantıda client'a ready event'i gönderilir: bağlantı ID'si
// ve o anki online kullanıcı listesi. Client presence state'ini bu
// snapshot ile kurar, sonrasını user_online/user_offline delta'ları taşır.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.validator.ValidateAccessToken(tokenString)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user=%s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: claims.UserID,
		connID: uuid.NewString(),
		chats:  make(map[string]bool),
	}

	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	client.sendEvent(Event{
		Op: OpReady,
		Data: ReadyData{
			ConnID:        client.connID,
			OnlineUserIDs: h.hub.GetOnlineUserIDs(),
		},
	})
}

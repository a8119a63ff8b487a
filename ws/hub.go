package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının WebSocket event'leri broadcast etmek
// için kullandığı interface.
//
// Service'ler Hub'ın concrete struct'ına değil bu interface'e bağımlıdır:
// testlerde mock EventPublisher kullanılır, Hub implementasyonu değişse
// bile service kodu etkilenmez.
//
// Tüm emit/broadcast operasyonları fire-and-forget'tir — hiçbiri teslimat
// onayı beklemeden döner. Aynı publisher'ın bir odaya gönderdiği event'ler
// gönderim sırasıyla teslim edilir (per-client sıralı send buffer).
type EventPublisher interface {
	BroadcastToAll(event Event)
	BroadcastToAllExcept(excludeUserID string, event Event)
	BroadcastToUser(userID string, event Event)
	BroadcastToChat(chatID string, event Event)
	BroadcastToChatExcept(chatID, excludeUserID string, event Event)
	GetOnlineUserIDs() []string
}

// Hub, tüm WebSocket bağlantılarını ve odaları yöneten merkezi yapıdır.
//
// İki oda türü:
// - clients:   userID → Client set (user room — bir kullanıcının tüm tab'ları)
// - chatRooms: chatID → Client set (o sohbeti görüntüleyen tüm bağlantılar)
//
// Hub.Run() goroutine'i register/unregister channel'larından select ile okur;
// broadcast metotları RWMutex ile doğrudan çağrılır.
type Hub struct {
	clients   map[string]map[*Client]bool
	chatRooms map[string]map[*Client]bool
	mu        sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq: Her outbound event'e verilen artan sayaç.
	seq atomic.Int64

	// Callback'ler — main package wire-up noktasında set edilir.
	// Hub service katmanına bağımlı olmaz (Dependency Inversion);
	// client event'leri bu callback'ler üzerinden service'lere akar.
	onClientConnect    func(userID, connID string)
	onClientDisconnect func(userID, connID string)
	onIdentify         func(userID, connID string)
	onPeerRegister     func(userID string, data PeerRegisterData)
	onCallRequest      func(userID string, data CallRequestData)
	onCallAccept       func(userID string, data CallAcceptData)
	onCallReject       func(userID string, data CallRejectData)
	onCallEnd          func(userID string, data CallEndData)
	onCallStatus       func(userID string, data CallStatusUpdateData)
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		chatRooms:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// ─── Callback Setter'ları ───

func (h *Hub) OnClientConnect(fn func(userID, connID string))    { h.onClientConnect = fn }
func (h *Hub) OnClientDisconnect(fn func(userID, connID string)) { h.onClientDisconnect = fn }
func (h *Hub) OnIdentify(fn func(userID, connID string))         { h.onIdentify = fn }
func (h *Hub) OnPeerRegister(fn func(userID string, data PeerRegisterData)) {
	h.onPeerRegister = fn
}
func (h *Hub) OnCallRequest(fn func(userID string, data CallRequestData)) { h.onCallRequest = fn }
func (h *Hub) OnCallAccept(fn func(userID string, data CallAcceptData))   { h.onCallAccept = fn }
func (h *Hub) OnCallReject(fn func(userID string, data CallRejectData))   { h.onCallReject = fn }
func (h *Hub) OnCallEnd(fn func(userID string, data CallEndData))         { h.onCallEnd = fn }
func (h *Hub) OnCallStatusUpdate(fn func(userID string, data CallStatusUpdateData)) {
	h.onCallStatus = fn
}

// Run, Hub'ın ana event loop'udur. main'de `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// addClient, yeni bir client'ı Hub'a ekler.
// Connect callback'i ayrı goroutine'de çağrılır — Hub mutex'i ile
// callback içindeki broadcast RLock'u çakışmaz.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	total := len(h.clients[client.userID])
	h.mu.Unlock()

	log.Printf("[ws] client connected: user=%s conn=%s (connections for user: %d)",
		client.userID, client.connID, total)

	if h.onClientConnect != nil {
		go h.onClientConnect(client.userID, client.connID)
	}
}

// removeClient, client'ı Hub'dan ve üyesi olduğu tüm chat room'lardan
// çıkarır, send channel'ını kapatır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	removed := false
	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
			removed = true

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}

	// Chat room üyeliklerini temizle
	for chatID := range client.chats {
		if room, ok := h.chatRooms[chatID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.chatRooms, chatID)
			}
		}
	}
	h.mu.Unlock()

	if !removed {
		return
	}

	log.Printf("[ws] client disconnected: user=%s conn=%s", client.userID, client.connID)

	if h.onClientDisconnect != nil {
		go h.onClientDisconnect(client.userID, client.connID)
	}
}

// ─── Chat Room Üyeliği ───

// JoinChat, client'ı bir chat room'a ekler (chat:open).
func (h *Hub) JoinChat(client *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.chatRooms[chatID]; !ok {
		h.chatRooms[chatID] = make(map[*Client]bool)
	}
	h.chatRooms[chatID][client] = true
	client.chats[chatID] = true
}

// LeaveChat, client'ı bir chat room'dan çıkarır (chat:close).
func (h *Hub) LeaveChat(client *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveChatLocked(client, chatID)
}

func (h *Hub) leaveChatLocked(client *Client, chatID string) {
	if room, ok := h.chatRooms[chatID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.chatRooms, chatID)
		}
	}
	delete(client.chats, chatID)
}

// ForceLeaveChat, bir kullanıcının o chat room'daki tüm bağlantılarını
// odadan düşürür ve her birine chat:force-leave gönderir.
// Gruptan çıkarılan üye sohbet broadcast'lerini almaya devam etmemeli.
func (h *Hub) ForceLeaveChat(chatID, userID string) {
	event := Event{
		Op:   OpChatForceLeave,
		Data: ChatForceLeaveData{ChatID: chatID},
		Seq:  h.seq.Add(1),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal force-leave event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.chatRooms[chatID]
	if !ok {
		return
	}
	for client := range room {
		if client.userID != userID {
			continue
		}
		h.leaveChatLocked(client, chatID)
		select {
		case client.send <- data:
		default:
		}
	}
}

// ─── Broadcast Primitifleri ───

// BroadcastToAll, tüm bağlı client'lara event gönderir.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.deliver(client, data)
		}
	}
}

// BroadcastToAllExcept, belirli bir kullanıcı hariç tüm client'lara gönderir.
func (h *Hub) BroadcastToAllExcept(excludeUserID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, clients := range h.clients {
		if userID == excludeUserID {
			continue
		}
		for client := range clients {
			h.deliver(client, data)
		}
	}
}

// BroadcastToUser, bir kullanıcının tüm bağlantılarına (user room) gönderir.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[userID]; ok {
		for client := range clients {
			h.deliver(client, data)
		}
	}
}

// BroadcastToChat, bir chat room'daki tüm bağlantılara gönderir —
// kimlikten bağımsız, o an sohbeti görüntüleyen herkes alır.
func (h *Hub) BroadcastToChat(chatID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal chat event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.chatRooms[chatID]; ok {
		for client := range room {
			h.deliver(client, data)
		}
	}
}

// BroadcastToChatExcept, chat room'a gönderir ama belirtilen kullanıcının
// bağlantılarını atlar (ör: aramayı bitiren taraf kendi call:ended
// bildirimini almaz).
func (h *Hub) BroadcastToChatExcept(chatID, excludeUserID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal chat event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.chatRooms[chatID]; ok {
		for client := range room {
			if client.userID == excludeUserID {
				continue
			}
			h.deliver(client, data)
		}
	}
}

// deliver, tek client'a non-blocking gönderim yapar.
// Buffer doluysa client yavaştır — bağlantı kapatılır.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		go func(c *Client) { h.unregister <- c }(client)
	}
}

// GetOnlineUserIDs, bağlı olan tüm kullanıcı ID'lerini döner.
func (h *Hub) GetOnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	h.chatRooms = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}

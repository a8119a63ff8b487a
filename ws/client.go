package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait: Bir yazma işleminin tamamlanması için tanınan süre.
	writeWait = 10 * time.Second

	// pongWait: Client'tan pong beklenen maksimum süre.
	pongWait = 60 * time.Second

	// pingPeriod: Ping gönderim aralığı (pongWait'ten kısa olmalı).
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize: İzin verilen maksimum mesaj boyutu.
	maxMessageSize = 4096

	// sendBufferSize: Client başına outbound event buffer'ı.
	// Buffer dolarsa client yavaş sayılır ve bağlantı düşürülür.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
// Aynı kullanıcı birden fazla tab ile bağlanabilir; her tab ayrı
// Client olur ve connID ile ayrıştırılır.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	connID string

	// chats: Bu bağlantının üyesi olduğu chat room'lar.
	// Hub mutex'i altında okunur/yazılır; disconnect temizliği için tutulur.
	chats map[string]bool
}

// ReadPump, client'tan gelen mesajları okur ve event'leri dispatch eder.
// Bağlantı başına tek goroutine olarak çalışır; döngü biterse client
// unregister edilir.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: user=%s conn=%s err=%v", c.userID, c.connID, err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("[ws] malformed event from user=%s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

// WritePump, send channel'ından gelen mesajları bağlantıya yazar ve
// periyodik ping gönderir. Bağlantı başına tek goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub channel'ı kapattı
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent, inbound event'i op'una göre ilgili Hub callback'ine yönlendirir.
// Payload'lar event.Data üzerinden re-marshal + unmarshal ile tipli struct'lara
// çevrilir; bozuk payload event'in sessizce atlanmasına yol açar (log'lanır).
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpIdentify:
		// Bağlantı zaten JWT ile kimliklendirilmiş; identify presence
		// kaydını tazeler (reconnect sonrası client tekrar gönderir).
		if c.hub.onIdentify != nil {
			c.hub.onIdentify(c.userID, c.connID)
		}

	case OpPeerRegister:
		var data PeerRegisterData
		if !c.decode(event, &data) {
			return
		}
		if c.hub.onPeerRegister != nil {
			c.hub.onPeerRegister(c.userID, data)
		}

	case OpChatOpen:
		var data ChatRoomData
		if !c.decode(event, &data) {
			return
		}
		c.hub.JoinChat(c, data.ChatID)

	case OpChatClose:
		var data ChatRoomData
		if !c.decode(event, &data) {
			return
		}
		c.hub.LeaveChat(c, data.ChatID)

	case OpCallRequest:
		var data CallRequestData
		if !c.decode(event, &data) {
			return
		}
		if c.hub.onCallRequest != nil {
			c.hub.onCallRequest(c.userID, data)
		}

	case OpCallAccept:
		var data CallAcceptData
		if !c.decode(event, &data) {
			return
		}
		if c.hub.onCallAccept != nil {
			c.hub.onCallAccept(c.userID, data)
		}

	case OpCallReject:
		var data CallRejectData
		if !c.decode(event, &data) {
			return
		}
		if c.hub.onCallReject != nil {
			c.hub.onCallReject(c.userID, data)
		}

	case OpCallEnd:
		var data CallEndData
		if !c.decode(event, &data) {
			return
		}
		if c.hub.onCallEnd != nil {
			c.hub.onCallEnd(c.userID, data)
		}

	case OpCallStatusUpdate:
		var data CallStatusUpdateData
		if !c.decode(event, &data) {
			return
		}
		if c.hub.onCallStatus != nil {
			c.hub.onCallStatus(c.userID, data)
		}

	default:
		log.Printf("[ws] unknown op %q from user=%s", event.Op, c.userID)
	}
}

// decode, event.Data'yı hedef struct'a çevirir.
func (c *Client) decode(event Event, target any) bool {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		log.Printf("[ws] failed to re-marshal %s payload: %v", event.Op, err)
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		log.Printf("[ws] invalid %s payload from user=%s: %v", event.Op, c.userID, err)
		return false
	}
	return true
}

// sendEvent, event'i yalnızca bu bağlantıya gönderir (ready gibi
// bağlantıya özel event'ler için).
func (c *Client) sendEvent(event Event) {
	event.Seq = c.hub.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal direct event: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[ws] send buffer full, dropping %s for user=%s", event.Op, c.userID)
	}
}

// Package services, sinyalleşme ve arama iş mantığını yönetir.
//
// Katman kuralları:
// - Service'ler repository'lere ve ws.EventPublisher'a interface
//   üzerinden bağımlıdır (constructor injection).
// - Geçici state (presence, peer eşlemesi, çalan aramalar) in-memory
//   tutulur — sunucu yeniden başladığında WS bağlantıları da düşer,
//   DB'ye yazmak gereksiz I/O olur.
// - Kalıcı state (arama geçmişi, bildirimler) repository üzerinden
//   SQLite'a yazılır.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/logit-app/rtc/config"
	"github.com/logit-app/rtc/models"
	"github.com/logit-app/rtc/pkg"
)

// CallChatChecker, token isteyen kullanıcının o sohbetin üyesi olup
// olmadığını doğrulamak için minimal interface.
type CallChatChecker interface {
	IsParticipant(ctx context.Context, chatID, userID string) (bool, error)
}

// RelayTokenService, medya relay'ine katılım token'ı üretir.
//
// Client'lar medyayı doğrudan aralarında taşır; relay token'ı yalnızca
// NAT arkasında kalan çiftlerin düştüğü aracılı yol içindir. Token
// relay'in API key/secret çiftiyle imzalanır; room adı arama kimliğidir,
// identity ise client'ın o oturumki peer ID'si.
type RelayTokenService interface {
	GenerateToken(ctx context.Context, userID, username, callID, chatID string) (*models.RelayTokenResponse, error)
}

type relayTokenService struct {
	chatChecker CallChatChecker
	peers       PeerRegistry
	relayCfg    config.RelayConfig
}

// NewRelayTokenService, yeni bir RelayTokenService oluşturur.
func NewRelayTokenService(chatChecker CallChatChecker, peers PeerRegistry, relayCfg config.RelayConfig) RelayTokenService {
	return &relayTokenService{
		chatChecker: chatChecker,
		peers:       peers,
		relayCfg:    relayCfg,
	}
}

func (s *relayTokenService) GenerateToken(ctx context.Context, userID, username, callID, chatID string) (*models.RelayTokenResponse, error) {
	if callID == "" || chatID == "" {
		return nil, fmt.Errorf("%w: call_id and chat_id are required", pkg.ErrBadRequest)
	}

	// Sohbet üyesi olmayan kullanıcı o aramanın odasına giremez
	isMember, err := s.chatChecker.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: not a participant of this chat", pkg.ErrForbidden)
	}

	// Identity = peer ID: relay tarafındaki katılımcı kimliği, sinyal
	// katmanındaki peer eşlemesiyle aynı olmalı ki taraflar birbirini
	// tanıyabilsin. Peer kaydı yoksa userID'ye düşülür.
	identity := userID
	if peerID, ok := s.peers.PeerID(userID); ok {
		identity = peerID
	}

	canPublish := true
	canSubscribe := true

	at := auth.NewAccessToken(s.relayCfg.APIKey, s.relayCfg.APISecret)
	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         callID,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(username).
		SetValidFor(2 * time.Hour)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("failed to generate relay token: %w", err)
	}

	return &models.RelayTokenResponse{
		Token:  token,
		URL:    s.relayCfg.URL,
		CallID: callID,
	}, nil
}

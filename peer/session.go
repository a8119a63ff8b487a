package peer

import (
	"context"
	"sync"
)

// MediaStream, yakalanmış bir yerel medya akışını temsil eder
// (mikrofon ± kamera). Stop idempotent olmalıdır.
type MediaStream interface {
	Kind() string // "audio" | "video"
	Stop()
}

// MediaSource, işletim sisteminden medya yakalama soyutlaması.
// Kullanıcı izni reddederse veya cihaz yoksa hata döner.
type MediaSource interface {
	Acquire(ctx context.Context, kind string) (MediaStream, error)
}

// MediaSession, aktif yerel medya akışını tutar.
// Aynı türde ikinci bir arama mevcut akışı yeniden kullanır — cihaz
// ikinci kez açılmaz.
type MediaSession struct {
	mu     sync.Mutex
	source MediaSource
	stream MediaStream
	kind   string
}

// NewMediaSession, yeni bir MediaSession oluşturur.
func NewMediaSession(source MediaSource) *MediaSession {
	return &MediaSession{source: source}
}

// AcquireOrReuse, istenen türde akışı döner.
// Aynı türde aktif akış varsa onu verir; farklı türde akış varsa eskisi
// durdurulup yenisi açılır (ses aramasından görüntülüye geçiş).
func (s *MediaSession) AcquireOrReuse(ctx context.Context, kind string) (MediaStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil && s.kind == kind {
		return s.stream, nil
	}

	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}

	stream, err := s.source.Acquire(ctx, kind)
	if err != nil {
		return nil, err
	}

	s.stream = stream
	s.kind = kind
	return stream, nil
}

// Teardown, aktif akışı koşulsuz durdurur. Akış yoksa no-op.
func (s *MediaSession) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
		s.kind = ""
	}
}

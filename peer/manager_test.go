package peer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logit-app/rtc/ws"
)

// ─── Fake'ler ───

type sentSignal struct {
	Op   string
	Data any
}

type fakeSignaler struct {
	mu    sync.Mutex
	sends []sentSignal
	fail  bool
}

func (s *fakeSignaler) Send(op string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection lost")
	}
	s.sends = append(s.sends, sentSignal{Op: op, Data: data})
	return nil
}

func (s *fakeSignaler) sent(op string) []sentSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentSignal
	for _, e := range s.sends {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}

type fakeStream struct {
	kind string

	mu      sync.Mutex
	stopped bool
}

func (s *fakeStream) Kind() string { return s.kind }

func (s *fakeStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeStream) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeSource struct {
	mu       sync.Mutex
	acquired int
	fail     bool
	last     *fakeStream
}

func (s *fakeSource) Acquire(_ context.Context, kind string) (MediaStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("permission denied")
	}
	s.acquired++
	s.last = &fakeStream{kind: kind}
	return s.last, nil
}

func (s *fakeSource) lastStream() *fakeStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

type fakeConn struct {
	remote string

	mu       sync.Mutex
	answered MediaStream
	closed   bool
}

func (c *fakeConn) RemotePeerID() string { return c.remote }

func (c *fakeConn) Answer(stream MediaStream) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answered = stream
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) wasAnswered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answered != nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeRelay struct {
	mu     sync.Mutex
	dialed []string
	conn   *fakeConn
	err    error
}

func (r *fakeRelay) Dial(_ context.Context, remotePeerID string, _ MediaStream) (MediaConn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.dialed = append(r.dialed, remotePeerID)
	if r.conn == nil {
		r.conn = &fakeConn{remote: remotePeerID}
	}
	return r.conn, nil
}

func newTestManager() (*Manager, *fakeSignaler, *fakeSource, *fakeRelay) {
	signaler := &fakeSignaler{}
	source := &fakeSource{}
	relay := &fakeRelay{}
	return NewManager("bob", signaler, source, relay), signaler, source, relay
}

func incomingCall(callID string) ws.CallRequestData {
	return ws.CallRequestData{
		CallID:     callID,
		ChatID:     "chat-1",
		From:       "alice",
		To:         "bob",
		Type:       "audio",
		FromPeerID: "peer-alice",
	}
}

// ─── Arama Başlatma ───

func TestStartCallMediaFailureAborts(t *testing.T) {
	m, signaler, source, _ := newTestManager()
	source.fail = true

	err := m.StartCall(context.Background(), "c1", "chat-1", "alice", "audio")
	require.Error(t, err)
	assert.Empty(t, signaler.sent(ws.OpCallRequest), "medya alınamadıysa sinyal gitmemeli")

	// Başarısız deneme sonraki aramayı bloklamamalı
	source.fail = false
	require.NoError(t, m.StartCall(context.Background(), "c2", "chat-1", "alice", "audio"))
	assert.Len(t, signaler.sent(ws.OpCallRequest), 1)
}

func TestStartCallDuplicateSuppressed(t *testing.T) {
	m, signaler, _, _ := newTestManager()

	require.NoError(t, m.StartCall(context.Background(), "c1", "chat-1", "alice", "audio"))

	err := m.StartCall(context.Background(), "c2", "chat-1", "alice", "audio")
	assert.ErrorIs(t, err, ErrCallInProgress)
	assert.Len(t, signaler.sent(ws.OpCallRequest), 1)
}

func TestHandleAcceptedDialsCallee(t *testing.T) {
	m, _, _, relay := newTestManager()

	require.NoError(t, m.StartCall(context.Background(), "c1", "chat-1", "alice", "video"))
	require.NoError(t, m.HandleAccepted(context.Background(), ws.CallAcceptData{
		CallID:     "c1",
		From:       "alice",
		FromPeerID: "peer-alice",
	}))

	relay.mu.Lock()
	defer relay.mu.Unlock()
	assert.Equal(t, []string{"peer-alice"}, relay.dialed)
}

func TestHandleRejectedStopsMedia(t *testing.T) {
	m, _, source, _ := newTestManager()

	require.NoError(t, m.StartCall(context.Background(), "c1", "chat-1", "alice", "audio"))

	m.HandleRejected(ws.CallRejectedData{CallID: "c1", Reason: "rejected"})
	assert.True(t, source.lastStream().isStopped(), "reddedilen aramada mikrofon kapanmalı")
}

// ─── Gelen Arama: Park / Bekleme ───

func TestAcceptAnswersParkedConnection(t *testing.T) {
	m, signaler, source, _ := newTestManager()

	m.HandleIncoming(incomingCall("c1"))

	// Arayanın bağlantısı accept'ten ÖNCE geldi (ters yarış)
	conn := &fakeConn{remote: "peer-alice"}
	m.HandleConnection(conn)

	start := time.Now()
	require.NoError(t, m.Accept(context.Background(), "c1"))
	assert.Less(t, time.Since(start), bindWaitInterval, "parktaki bağlantı beklemeden cevaplanmalı")

	assert.True(t, conn.wasAnswered())
	assert.Equal(t, source.lastStream(), conn.answered)
	assert.Len(t, signaler.sent(ws.OpCallAccept), 1)
}

func TestAcceptWaitsForLateConnection(t *testing.T) {
	m, _, _, _ := newTestManager()

	m.HandleIncoming(incomingCall("c1"))

	conn := &fakeConn{remote: "peer-alice"}
	go func() {
		time.Sleep(250 * time.Millisecond)
		m.HandleConnection(conn)
	}()

	require.NoError(t, m.Accept(context.Background(), "c1"))
	assert.True(t, conn.wasAnswered())
}

func TestAcceptTimesOutWithoutConnection(t *testing.T) {
	m, signaler, source, _ := newTestManager()

	m.HandleIncoming(incomingCall("c1"))

	err := m.Accept(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrBindTimeout)

	// Arama medyasız askıda bırakılmaz: medya kapanır, karşıya end gider
	assert.True(t, source.lastStream().isStopped())
	assert.Len(t, signaler.sent(ws.OpCallEnd), 1)
}

func TestAcceptMediaFailureRejectsCall(t *testing.T) {
	m, signaler, source, _ := newTestManager()
	source.fail = true

	m.HandleIncoming(incomingCall("c1"))

	err := m.Accept(context.Background(), "c1")
	require.Error(t, err)
	assert.Empty(t, signaler.sent(ws.OpCallAccept))
	assert.Len(t, signaler.sent(ws.OpCallReject), 1, "medya alınamayınca arama reddedilmeli")
}

func TestRejectClosesParkedConnection(t *testing.T) {
	m, signaler, _, _ := newTestManager()

	m.HandleIncoming(incomingCall("c1"))

	// Arayanın bağlantısı red kararından önce geldi
	conn := &fakeConn{remote: "peer-alice"}
	m.HandleConnection(conn)

	require.NoError(t, m.Reject("c1"))

	assert.True(t, conn.isClosed(), "reddedilen aramanın parktaki bağlantısı kapanmalı")
	assert.Len(t, signaler.sent(ws.OpCallReject), 1)
}

func TestAcceptMediaFailureClosesParkedConnection(t *testing.T) {
	m, _, source, _ := newTestManager()
	source.fail = true

	m.HandleIncoming(incomingCall("c1"))

	conn := &fakeConn{remote: "peer-alice"}
	m.HandleConnection(conn)

	require.Error(t, m.Accept(context.Background(), "c1"))
	assert.True(t, conn.isClosed(), "kurulamayan aramanın parktaki bağlantısı kapanmalı")
}

func TestRemoteEndClosesParkedConnection(t *testing.T) {
	m, _, _, _ := newTestManager()

	m.HandleIncoming(incomingCall("c1"))

	conn := &fakeConn{remote: "peer-alice"}
	m.HandleConnection(conn)

	// Arayan accept'ten önce vazgeçti
	m.HandleEnded("c1")
	assert.True(t, conn.isClosed())
}

func TestIncomingDuplicateRequestSuppressed(t *testing.T) {
	m, _, _, _ := newTestManager()

	delivered := 0
	m.OnIncoming = func(ws.CallRequestData) { delivered++ }

	m.HandleIncoming(incomingCall("c1"))
	m.HandleIncoming(incomingCall("c1"))

	assert.Equal(t, 1, delivered, "aynı arama UI'a bir kez bildirilmeli")
}

func TestAutoAccept(t *testing.T) {
	m, signaler, _, _ := newTestManager()
	m.AutoAccept = true

	m.HandleIncoming(incomingCall("c1"))
	m.HandleConnection(&fakeConn{remote: "peer-alice"})

	require.Eventually(t, func() bool {
		return len(signaler.sent(ws.OpCallAccept)) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

// ─── Kapanış ───

func TestEndReleasesResourcesEvenIfSignalFails(t *testing.T) {
	m, signaler, source, relay := newTestManager()

	require.NoError(t, m.StartCall(context.Background(), "c1", "chat-1", "alice", "audio"))
	require.NoError(t, m.HandleAccepted(context.Background(), ws.CallAcceptData{CallID: "c1", FromPeerID: "peer-alice"}))

	signaler.fail = true
	err := m.End("c1", "chat-1")
	require.Error(t, err, "sinyal hatası çağırana dönmeli")

	assert.True(t, source.lastStream().isStopped(), "sinyal gidemese de mikrofon kapanmalı")
	assert.True(t, relay.conn.isClosed())
}

func TestHandleEndedStopsMedia(t *testing.T) {
	m, _, source, relay := newTestManager()

	var endedID string
	m.OnEnded = func(callID string) { endedID = callID }

	require.NoError(t, m.StartCall(context.Background(), "c1", "chat-1", "alice", "audio"))
	require.NoError(t, m.HandleAccepted(context.Background(), ws.CallAcceptData{CallID: "c1", FromPeerID: "peer-alice"}))

	m.HandleEnded("c1")

	assert.True(t, source.lastStream().isStopped())
	assert.True(t, relay.conn.isClosed())
	assert.Equal(t, "c1", endedID)
}

func TestRejectUnknownCall(t *testing.T) {
	m, _, _, _ := newTestManager()
	assert.ErrorIs(t, m.Reject("ghost"), ErrNoSuchCall)
}

package server

import (
	"sync"

	"github.com/satori/go.uuid"
)

func newTestLogger() *Logger {
	config := &Config{}
	config.DevelopmentEnabled = true
	return NewLogger(config)
}

var (
	testStatsOnce sync.Once
	testStats     *Stats
)

// Stat views register globally, so all tests share one holder.
func newTestStats() *Stats {
	testStatsOnce.Do(func() {
		testStats = NewStats(newTestLogger())
	})
	return testStats
}

// fakeSession stands in for a websocket-backed session and records every
// payload pushed to it.
type fakeSession struct {
	sync.Mutex
	id       uuid.UUID
	playerID uuid.UUID
	sent     [][]byte
	closed   bool
}

func newFakeSession(playerID uuid.UUID) *fakeSession {
	return &fakeSession{
		id:       uuid.NewV4(),
		playerID: playerID,
	}
}

func (s *fakeSession) ID() uuid.UUID       { return s.id }
func (s *fakeSession) PlayerID() uuid.UUID { return s.playerID }
func (s *fakeSession) ClientIP() string    { return "127.0.0.1" }

func (s *fakeSession) Consume(func(session Session, payload []byte) bool) {}

func (s *fakeSession) SendBytes(payload []byte) error {
	s.Lock()
	s.sent = append(s.sent, payload)
	s.Unlock()
	return nil
}

func (s *fakeSession) Close() {
	s.Lock()
	s.closed = true
	s.Unlock()
}

func (s *fakeSession) IsClosed() bool {
	s.Lock()
	defer s.Unlock()
	return s.closed
}

func (s *fakeSession) sentPayloads() [][]byte {
	s.Lock()
	defer s.Unlock()
	payloads := make([][]byte, len(s.sent))
	copy(payloads, s.sent)
	return payloads
}

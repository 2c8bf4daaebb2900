// Package httpgateway implements the budget and customer repositories over the
// REST API, so the lifecycle manager can run in a client process.
package httpgateway

import (
	"strings"
	"sync"
)

// Session holds the bearer token sent with every request.
// Invalidate clears it and runs the teardown hook once per token.
type Session struct {
	mu           sync.Mutex
	token        string
	onInvalidate func()
}

func NewSession(token string, onInvalidate func()) *Session {
	return &Session{token: strings.TrimSpace(token), onInvalidate: onInvalidate}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Valid() bool {
	return s.Token() != ""
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	hook := s.onInvalidate
	s.mu.Unlock()

	if had && hook != nil {
		hook()
	}
}

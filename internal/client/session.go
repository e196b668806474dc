package client

import (
	"sync"

	"github.com/MANGOpali/attendance-backend/internal/models"
)

type SessionData struct {
	Token string             `json:"token,omitempty"`
	User  *models.PublicUser `json:"user,omitempty"`
	Lang  Lang               `json:"lang,omitempty"`
}

// Session is the signed-in state shared by the API client and whatever renders
// results. Every change is written through to its Storage.
type Session struct {
	mu    sync.RWMutex
	store Storage
	data  SessionData
}

func NewSession(store Storage) (*Session, error) {
	data, err := store.Load()
	if err != nil {
		return nil, err
	}
	if data.Lang == "" {
		data.Lang = LangEnglish
	}
	return &Session{store: store, data: data}, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.User == nil {
		return nil
	}
	u := *s.data.User
	return &u
}

func (s *Session) SignedIn() bool {
	return s.Token() != ""
}

func (s *Session) HasRole(roles ...models.Role) bool {
	u := s.User()
	if u == nil {
		return false
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

func (s *Session) Lang() Lang {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Lang
}

func (s *Session) SignIn(token string, user models.PublicUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	s.data.User = &user
	return s.store.Save(s.data)
}

// Clear signs out but keeps the language preference.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = SessionData{Lang: s.data.Lang}
	return s.store.Save(s.data)
}

func (s *Session) SetLang(lang Lang) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Lang = lang
	return s.store.Save(s.data)
}

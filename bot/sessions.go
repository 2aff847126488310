package bot

import (
	"sync"

	"github.com/dulchik/mailbot/compose"
	"github.com/dulchik/mailbot/inbox"
)

// chatState is the transient state of one conversation.
type chatState struct {
	listing *inbox.Index
	draft   *compose.Session
}

// Sessions is the per-conversation keyed store. State is created on first
// use and dropped when a conversation has neither a listing nor a draft.
type Sessions struct {
	mu    sync.Mutex
	chats map[int64]*chatState
}

func NewSessions() *Sessions {
	return &Sessions{chats: make(map[int64]*chatState)}
}

func (s *Sessions) get(chatID int64) *chatState {
	st, ok := s.chats[chatID]
	if !ok {
		st = &chatState{}
		s.chats[chatID] = st
	}
	return st
}

func (s *Sessions) gc(chatID int64) {
	if st, ok := s.chats[chatID]; ok && st.listing == nil && st.draft == nil {
		delete(s.chats, chatID)
	}
}

// Listing returns the current inbox listing of a chat, nil if none.
func (s *Sessions) Listing(chatID int64) *inbox.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.chats[chatID]; ok {
		return st.listing
	}
	return nil
}

// SetListing replaces the chat's listing wholesale.
func (s *Sessions) SetListing(chatID int64, idx *inbox.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(chatID).listing = idx
	s.gc(chatID)
}

// Draft returns the active composition of a chat, nil if none.
func (s *Sessions) Draft(chatID int64) *compose.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.chats[chatID]; ok {
		return st.draft
	}
	return nil
}

func (s *Sessions) SetDraft(chatID int64, d *compose.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(chatID).draft = d
	s.gc(chatID)
}

func (s *Sessions) ClearDraft(chatID int64) {
	s.SetDraft(chatID, nil)
}

// Len returns the number of chats holding state.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"maunium.net/go/mautrix/id"
)

type syncState struct {
	NextBatch string               `json:"next_batch"`
	Filters   map[id.UserID]string `json:"filters,omitempty"`
}

// FileSyncStore keeps the sync token and filter ids in one JSON file so a
// restart neither replays old commands nor re-uploads the room filter.
type FileSyncStore struct {
	mu    sync.Mutex
	path  string
	state *syncState
}

func NewFileSyncStore(path string) *FileSyncStore {
	return &FileSyncStore{path: path}
}

func (s *FileSyncStore) SaveFilterID(_ context.Context, userID id.UserID, filterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	if st.Filters == nil {
		st.Filters = make(map[id.UserID]string)
	}
	st.Filters[userID] = filterID
	return s.flush()
}

func (s *FileSyncStore) LoadFilterID(_ context.Context, userID id.UserID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return "", err
	}
	return st.Filters[userID], nil
}

func (s *FileSyncStore) SaveNextBatch(_ context.Context, _ id.UserID, nextBatchToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	st.NextBatch = strings.TrimSpace(nextBatchToken)
	return s.flush()
}

func (s *FileSyncStore) LoadNextBatch(_ context.Context, _ id.UserID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return "", err
	}
	return st.NextBatch, nil
}

// load reads the file once; callers hold mu.
func (s *FileSyncStore) load() (*syncState, error) {
	if s.state != nil {
		return s.state, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.state = &syncState{}
			return s.state, nil
		}
		return nil, err
	}
	var st syncState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode sync state %s: %w", s.path, err)
	}
	s.state = &st
	return s.state, nil
}

func (s *FileSyncStore) flush() error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return err
	}
	return writeFileAtomically(s.path, append(data, '\n'), 0o600)
}

func writeFileAtomically(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

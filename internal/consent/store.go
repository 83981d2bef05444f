package consent

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// FileStore keeps key-value pairs in a single JSON file. Good enough
// for the one consent record this daemon persists.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.read()
	if err != nil {
		return nil, false, err
	}
	raw, ok := kv[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

func (f *FileStore) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.read()
	if err != nil {
		return err
	}
	kv[key] = json.RawMessage(value)

	raw, err := json.Marshal(kv)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

func (f *FileStore) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	kv := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &kv); err != nil {
		return nil, err
	}
	return kv, nil
}

// MemStore is the in-memory Store used by tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailSet makes Set return this error, to exercise the
	// log-and-continue path.
	FailSet error
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string][]byte{}}
}

func (m *MemStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	return raw, ok, nil
}

func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

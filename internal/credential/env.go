package credential

import (
	"os"
	"sync"
)

// Env is the key/value store a credential is read from and published to.
type Env interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

// ProcessEnv is the process environment, inherited by child processes.
type ProcessEnv struct{}

func (ProcessEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (ProcessEnv) Set(key, value string) error      { return os.Setenv(key, value) }

// MapEnv is an in-memory Env.
type MapEnv struct {
	mu   sync.Mutex
	vars map[string]string
}

// NewMapEnv returns a MapEnv seeded with vars.
func NewMapEnv(vars map[string]string) *MapEnv {
	m := &MapEnv{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

func (m *MapEnv) Lookup(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[key]
	return v, ok
}

func (m *MapEnv) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[key] = value
	return nil
}

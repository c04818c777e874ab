package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/client/client"
	"github.com/dmitrijs2005/gophrelease/internal/client/models"
	"github.com/dmitrijs2005/gophrelease/internal/devices"
	"github.com/dmitrijs2005/gophrelease/internal/history"
)

var errBoom = errors.New("boom")

// memMeta is an in-memory metadata.Repository.
type memMeta struct {
	mu      sync.Mutex
	data    map[string][]byte
	saved   map[string]time.Time
	failSet bool
}

func newMemMeta() *memMeta {
	return &memMeta{data: map[string][]byte{}, saved: map[string]time.Time{}}
}

func (m *memMeta) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memMeta) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errBoom
	}
	m.data[key] = append([]byte(nil), value...)
	m.saved[key] = time.Now()
	return nil
}

func (m *memMeta) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.saved, key)
	return nil
}

func (m *memMeta) ModTime(_ context.Context, key string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[key], nil
}

// failingHistory rejects every save.
type failingHistory struct{ history.MemoryRepository }

func (*failingHistory) Save(context.Context, []history.Entry) error { return errBoom }

type fakePublisher struct {
	mu       sync.Mutex
	calls    int
	content  []byte
	settings models.GitHubSettings
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (p *fakePublisher) Publish(ctx context.Context, s models.GitHubSettings, content []byte) (client.PublishResult, error) {
	p.mu.Lock()
	p.calls++
	p.content = content
	p.settings = s
	block, started := p.block, p.started
	p.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if p.err != nil {
		return client.PublishResult{}, p.err
	}
	return client.PublishResult{CommitSHA: "c0ffee", ContentSHA: "abc", Created: true, Attempts: 1}, nil
}

func (p *fakePublisher) TestConnection(_ context.Context, s models.GitHubSettings) (string, error) {
	if err := s.ValidateConnection(); err != nil {
		return "", err
	}
	return s.Owner + "/" + s.Repo, nil
}

type fakeMirror struct {
	content []byte
	err     error
}

func (m *fakeMirror) Mirror(_ context.Context, content []byte) (client.MirrorResult, error) {
	m.content = content
	if m.err != nil {
		return client.MirrorResult{}, m.err
	}
	return client.MirrorResult{ETag: `"e1"`, Created: true}, nil
}

type fakeSource struct {
	devs []devices.Device
	err  error
}

func (s *fakeSource) Fetch(context.Context) ([]devices.Device, error) {
	return s.devs, s.err
}

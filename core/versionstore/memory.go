package versionstore

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memObject struct {
	data     []byte
	revision string
	meta     map[string]string
	modified time.Time
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	seq     int
	now     func() time.Time
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject), now: time.Now}
}

func (m *Memory) Get(_ context.Context, p string) (Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[p]
	if !ok {
		return Content{}, ErrNotFound
	}
	return Content{
		Path:     p,
		Data:     append([]byte(nil), obj.data...),
		Revision: obj.revision,
		Message:  obj.meta[MetaMessage],
	}, nil
}

func (m *Memory) Put(_ context.Context, p string, data []byte, opts PutOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.Revision != "" {
		if cur, ok := m.objects[p]; !ok || cur.revision != opts.Revision {
			return "", ErrConflict
		}
	}

	meta := make(map[string]string, len(opts.Metadata)+1)
	for k, v := range opts.Metadata {
		meta[k] = v
	}
	if opts.Message != "" {
		meta[MetaMessage] = opts.Message
	}

	m.seq++
	rev := strconv.Itoa(m.seq)
	m.objects[p] = memObject{
		data:     append([]byte(nil), data...),
		revision: rev,
		meta:     meta,
		modified: m.now(),
	}
	return rev, nil
}

func (m *Memory) Delete(_ context.Context, p, revision string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.objects[p]
	if !ok {
		return ErrNotFound
	}
	if revision != "" && cur.revision != revision {
		return ErrConflict
	}
	delete(m.objects, p)
	return nil
}

func (m *Memory) List(_ context.Context, dir string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := dirPrefix(dir)
	var entries []Entry
	for p, obj := range m.objects {
		if !strings.HasPrefix(p, prefix) || strings.Contains(p[len(prefix):], "/") {
			continue
		}
		meta := make(map[string]string, len(obj.meta))
		for k, v := range obj.meta {
			meta[k] = v
		}
		entries = append(entries, Entry{
			Name:     path.Base(p),
			Path:     p,
			Size:     int64(len(obj.data)),
			Revision: obj.revision,
			Modified: obj.modified,
			Metadata: meta,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

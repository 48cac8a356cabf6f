package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/searchkit/core"
)

// MemoryStore 是内存实现的 Store + EventStore，用于测试/开发/单机部署。
// 事件日志只追加、锁保护，支持多请求并发 Append 不丢写；进程重启后数据丢失。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*entry

	evmu   sync.RWMutex
	events map[string][]*core.ExperimentEvent // variant -> 按追加序的事件
}

type entry struct {
	value []byte
	ttl   *time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]*entry),
		events: make(map[string][]*core.ExperimentEvent),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

// ===== core.Store =====

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if e.ttl != nil && time.Now().After(*e.ttl) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.ttl = &expire
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		e, ok := m.data[k]
		if !ok {
			continue
		}
		if e.ttl != nil && now.After(*e.ttl) {
			continue
		}
		result[k] = e.value
	}
	return result, nil
}

func (m *MemoryStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expire *time.Time
	if len(ttl) > 0 && ttl[0] > 0 {
		t := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		expire = &t
	}

	for k, v := range kvs {
		m.data[k] = &entry{value: v, ttl: expire}
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// ===== core.EventStore =====

var _ core.EventStore = (*MemoryStore)(nil)
var _ core.Store = (*MemoryStore)(nil)

// Append 追加一条事件。存副本，调用方后续修改入参不影响日志。
func (m *MemoryStore) Append(ctx context.Context, event *core.ExperimentEvent) error {
	if event == nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: nil event")
	}
	cp := *event

	m.evmu.Lock()
	defer m.evmu.Unlock()
	m.events[cp.Variant] = append(m.events[cp.Variant], &cp)
	return nil
}

// Events 返回指定变体在 since 之后（含）的事件，按追加序。
func (m *MemoryStore) Events(ctx context.Context, variant string, since time.Time) ([]*core.ExperimentEvent, error) {
	m.evmu.RLock()
	defer m.evmu.RUnlock()

	var out []*core.ExperimentEvent
	for _, ev := range m.events[variant] {
		if ev.Timestamp.Before(since) {
			continue
		}
		cp := *ev
		out = append(out, &cp)
	}
	return out, nil
}

// Variants 返回出现过事件的变体名（升序）。
func (m *MemoryStore) Variants(ctx context.Context) ([]string, error) {
	m.evmu.RLock()
	defer m.evmu.RUnlock()

	names := make([]string, 0, len(m.events))
	for name, evs := range m.events {
		if len(evs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Prune 删除 before 之前的事件，返回删除条数。
func (m *MemoryStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.evmu.Lock()
	defer m.evmu.Unlock()

	var pruned int64
	for variant, evs := range m.events {
		kept := evs[:0]
		for _, ev := range evs {
			if ev.Timestamp.Before(before) {
				pruned++
				continue
			}
			kept = append(kept, ev)
		}
		if len(kept) == 0 {
			delete(m.events, variant)
			continue
		}
		m.events[variant] = kept
	}
	return pruned, nil
}

package stores

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oarkflow/clusteracl"
)

// MemoryGroupStore keeps deployment groups in a mutex-guarded map. Intended
// for tests and single-process demos.
type MemoryGroupStore struct {
	mu     sync.RWMutex
	groups map[string]*clusteracl.DeploymentGroup
}

func NewMemoryGroupStore() *MemoryGroupStore {
	return &MemoryGroupStore{
		groups: make(map[string]*clusteracl.DeploymentGroup),
	}
}

func (s *MemoryGroupStore) CreateGroup(ctx context.Context, g *clusteracl.DeploymentGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; ok {
		return fmt.Errorf("group already exists: %s", g.ID)
	}
	dup := cloneGroup(g)
	if dup.CreatedAt.IsZero() {
		dup.CreatedAt = time.Now()
	}
	s.groups[g.ID] = dup
	return nil
}

func (s *MemoryGroupStore) UpdateGroup(ctx context.Context, g *clusteracl.DeploymentGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.groups[g.ID]
	if !ok {
		return fmt.Errorf("group not found: %s", g.ID)
	}
	dup := cloneGroup(g)
	dup.CreatedAt = old.CreatedAt
	s.groups[g.ID] = dup
	return nil
}

func (s *MemoryGroupStore) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, id)
	return nil
}

func (s *MemoryGroupStore) GetGroup(ctx context.Context, id string) (*clusteracl.DeploymentGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group not found: %s", id)
	}
	return cloneGroup(g), nil
}

func (s *MemoryGroupStore) ListGroups(ctx context.Context) ([]*clusteracl.DeploymentGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*clusteracl.DeploymentGroup, 0, len(s.groups))
	for _, g := range s.groups {
		result = append(result, cloneGroup(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MemoryHostLabelStore keeps host label maps in memory.
type MemoryHostLabelStore struct {
	mu    sync.RWMutex
	hosts map[string]map[string]string
}

func NewMemoryHostLabelStore() *MemoryHostLabelStore {
	return &MemoryHostLabelStore{
		hosts: make(map[string]map[string]string),
	}
}

func (s *MemoryHostLabelStore) SetLabels(ctx context.Context, host string, labels map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts[host] = cloneLabels(labels)
	return nil
}

func (s *MemoryHostLabelStore) GetLabels(ctx context.Context, host string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels, ok := s.hosts[host]
	if !ok {
		return nil, fmt.Errorf("host not found: %s", host)
	}
	return cloneLabels(labels), nil
}

func (s *MemoryHostLabelStore) DeleteHost(ctx context.Context, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hosts, host)
	return nil
}

func (s *MemoryHostLabelStore) ListHosts(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		result = append(result, h)
	}
	sort.Strings(result)
	return result, nil
}

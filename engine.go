package clusteracl

import (
	"context"
	"fmt"
	"time"

	"github.com/oarkflow/clusteracl/logger"
)

// ============================================================================
// DEPLOYMENT GROUPS & STORAGE INTERFACES
// ============================================================================

// DeploymentGroup attaches a selector set to a named group of hosts. Jobs
// deployed to the group land on every host whose labels satisfy all selectors.
type DeploymentGroup struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Selectors []*HostSelector `json:"selectors"`
	CreatedAt time.Time       `json:"created_at"`
}

// GroupStore manages deployment group persistence.
type GroupStore interface {
	CreateGroup(ctx context.Context, g *DeploymentGroup) error
	UpdateGroup(ctx context.Context, g *DeploymentGroup) error
	DeleteGroup(ctx context.Context, id string) error
	GetGroup(ctx context.Context, id string) (*DeploymentGroup, error)
	ListGroups(ctx context.Context) ([]*DeploymentGroup, error)
}

// HostLabelStore manages agent-reported host labels.
type HostLabelStore interface {
	SetLabels(ctx context.Context, host string, labels map[string]string) error
	GetLabels(ctx context.Context, host string) (map[string]string, error)
	DeleteHost(ctx context.Context, host string) error
	ListHosts(ctx context.Context) ([]string, error)
}

// ============================================================================
// ENGINE
// ============================================================================

// Engine ties the ACL provider and the selector machinery to their stores. The
// provider itself stays pure; the engine adds caching, persistence and logging
// around it.
type Engine struct {
	provider    *Provider
	groupStore  GroupStore
	hostStore   HostLabelStore
	aclCache    *ACLCache
	logger      logger.Logger
	traceIDFunc logger.TraceIDFunc
}

type EngineOption func(*Engine) error

func NewEngine(provider *Provider, groups GroupStore, hosts HostLabelStore, opts ...EngineOption) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("acl provider is required")
	}
	e := &Engine{
		provider:   provider,
		groupStore: groups,
		hostStore:  hosts,
		logger:     logger.NewNullLogger(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Provider returns the underlying ACL provider.
func (e *Engine) Provider() *Provider { return e.provider }

func (e *Engine) traceID() string {
	if e.traceIDFunc != nil {
		return e.traceIDFunc()
	}
	return ""
}

// ResolveACL resolves the effective ACL for a node path, consulting the
// resolution cache when one is configured. Cached or not, the result is
// identical to Provider.Resolve.
func (e *Engine) ResolveACL(ctx context.Context, path string) []Entry {
	if e.aclCache != nil {
		if entries, ok := e.aclCache.Get(path); ok {
			return entries
		}
	}
	entries := e.provider.Resolve(path)
	if e.aclCache != nil {
		e.aclCache.Set(path, entries)
	}
	e.logger.Debug("resolved acl", "path", path, "entries", len(entries), "trace_id", e.traceID())
	return entries
}

// RegisterHost records (or replaces) the labels reported by a host agent.
func (e *Engine) RegisterHost(ctx context.Context, host string, labels map[string]string) error {
	if e.hostStore == nil {
		return fmt.Errorf("no host label store configured")
	}
	if err := e.hostStore.SetLabels(ctx, host, labels); err != nil {
		return fmt.Errorf("register host %s: %w", host, err)
	}
	e.logger.Info("host registered", "host", host, "labels", len(labels), "trace_id", e.traceID())
	return nil
}

// DeregisterHost removes a host and its labels.
func (e *Engine) DeregisterHost(ctx context.Context, host string) error {
	if e.hostStore == nil {
		return fmt.Errorf("no host label store configured")
	}
	if err := e.hostStore.DeleteHost(ctx, host); err != nil {
		return fmt.Errorf("deregister host %s: %w", host, err)
	}
	e.logger.Info("host deregistered", "host", host, "trace_id", e.traceID())
	return nil
}

// HostLabels returns the labels last reported for a host.
func (e *Engine) HostLabels(ctx context.Context, host string) (map[string]string, error) {
	if e.hostStore == nil {
		return nil, fmt.Errorf("no host label store configured")
	}
	return e.hostStore.GetLabels(ctx, host)
}

// CreateGroup stores a deployment group after validating its selectors.
func (e *Engine) CreateGroup(ctx context.Context, g *DeploymentGroup) error {
	if e.groupStore == nil {
		return fmt.Errorf("no group store configured")
	}
	if g.ID == "" {
		return fmt.Errorf("deployment group requires an id")
	}
	for _, s := range g.Selectors {
		if s == nil || !s.Operator.known() {
			return fmt.Errorf("group %s: invalid selector", g.ID)
		}
	}
	if err := e.groupStore.CreateGroup(ctx, g); err != nil {
		return fmt.Errorf("create group %s: %w", g.ID, err)
	}
	e.logger.Info("group created", "group", g.ID, "selectors", len(g.Selectors), "trace_id", e.traceID())
	return nil
}

// Group returns a stored deployment group.
func (e *Engine) Group(ctx context.Context, id string) (*DeploymentGroup, error) {
	if e.groupStore == nil {
		return nil, fmt.Errorf("no group store configured")
	}
	return e.groupStore.GetGroup(ctx, id)
}

// MatchGroupHosts evaluates a group's selector set against every registered
// host and returns the sorted names of those that satisfy it.
func (e *Engine) MatchGroupHosts(ctx context.Context, groupID string) ([]string, error) {
	if e.groupStore == nil || e.hostStore == nil {
		return nil, fmt.Errorf("group and host label stores are required for matching")
	}
	group, err := e.groupStore.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group %s: %w", groupID, err)
	}
	names, err := e.hostStore.ListHosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	hosts := make(map[string]map[string]string, len(names))
	for _, h := range names {
		labels, err := e.hostStore.GetLabels(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("labels for host %s: %w", h, err)
		}
		hosts[h] = labels
	}
	matched := MatchHosts(hosts, group.Selectors)
	e.logger.Debug("matched group hosts", "group", groupID, "candidates", len(hosts), "matched", len(matched), "trace_id", e.traceID())
	return matched, nil
}

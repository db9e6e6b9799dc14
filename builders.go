package clusteracl

import (
	"fmt"
	"time"
)

// Builders provide a fluent API for assembling providers and deployment groups

// ProviderBuilder accumulates ACL rules. The first pattern compilation error
// is kept and surfaced by Build, so a bad pattern fails configuration instead
// of silently dropping a rule.
type ProviderBuilder struct {
	rules      []Rule
	defaultACL []Entry
	err        error
}

func NewProviderBuilder() *ProviderBuilder { return &ProviderBuilder{} }

func (b *ProviderBuilder) DefaultACL(entries ...Entry) *ProviderBuilder {
	b.defaultACL = append(b.defaultACL, entries...)
	return b
}

func (b *ProviderBuilder) Rule(pattern string, perms Perms, identity Identity) *ProviderBuilder {
	if b.err != nil {
		return b
	}
	r, err := NewRule(pattern, perms, identity)
	if err != nil {
		b.err = err
		return b
	}
	b.rules = append(b.rules, r)
	return b
}

func (b *ProviderBuilder) Build() (*Provider, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewProvider(b.rules, b.defaultACL), nil
}

// GroupBuilder builds a DeploymentGroup from textual selector expressions.
type GroupBuilder struct {
	g   *DeploymentGroup
	err error
}

func NewGroupBuilder() *GroupBuilder { return &GroupBuilder{g: &DeploymentGroup{}} }

func (b *GroupBuilder) ID(id string) *GroupBuilder     { b.g.ID = id; return b }
func (b *GroupBuilder) Name(name string) *GroupBuilder { b.g.Name = name; return b }

func (b *GroupBuilder) Selector(expr string) *GroupBuilder {
	if b.err != nil {
		return b
	}
	sel, err := ParseSelector(expr)
	if err != nil {
		b.err = err
		return b
	}
	if sel == nil {
		b.err = fmt.Errorf("not a selector: %q", expr)
		return b
	}
	b.g.Selectors = append(b.g.Selectors, sel)
	return b
}

func (b *GroupBuilder) Build() (*DeploymentGroup, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.g.CreatedAt.IsZero() {
		b.g.CreatedAt = time.Now()
	}
	return b.g, nil
}

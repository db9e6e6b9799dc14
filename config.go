package clusteracl

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the declarative configuration: the shared role credentials, the
// ACL rule table with its fallback, the deployment groups known at startup and
// the engine settings.
type Config struct {
	Version     int           `json:"version" yaml:"version"`
	Credentials Credentials   `json:"credentials" yaml:"credentials"`
	DefaultACL  []EntryConfig `json:"default_acl" yaml:"default_acl"`
	Rules       []RuleConfig  `json:"rules" yaml:"rules"`
	Groups      []GroupConfig `json:"groups" yaml:"groups"`
	Engine      EngineConfig  `json:"engine" yaml:"engine"`
}

// Credentials carries the two shared role digests. One secret per role, not
// per instance: a deliberate trade-off of the deployment model, kept explicit
// here instead of hidden in per-agent provisioning.
type Credentials struct {
	MasterDigest string `json:"master_digest" yaml:"master_digest"`
	AgentDigest  string `json:"agent_digest" yaml:"agent_digest"`
}

// RuleConfig is one ACL rule in serialized form. Role names one of the fixed
// principals ("master", "agent", "anyone"); Perms uses the letter form, e.g.
// "crwd".
type RuleConfig struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Perms   string `json:"perms" yaml:"perms"`
	Role    string `json:"role" yaml:"role"`
}

// EntryConfig is a literal ACL entry for the fallback list.
type EntryConfig struct {
	Scheme string `json:"scheme" yaml:"scheme"`
	ID     string `json:"id" yaml:"id"`
	Perms  string `json:"perms" yaml:"perms"`
}

// GroupConfig declares a deployment group by its selector expressions.
type GroupConfig struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Selectors []string `json:"selectors" yaml:"selectors"`
}

type EngineConfig struct {
	ACLCacheNumCounters int64 `json:"acl_cache_num_counters" yaml:"acl_cache_num_counters"`
	ACLCacheMaxCost     int64 `json:"acl_cache_max_cost" yaml:"acl_cache_max_cost"`
	ACLCacheBuffer      int64 `json:"acl_cache_buffer" yaml:"acl_cache_buffer"`
}

// ConfigLoader loads configuration from various formats
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToYAML exports config to YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToJSON exports config to JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// identity resolves a configured role name to its principal.
func (c *Config) identity(role string) (Identity, error) {
	switch role {
	case "master":
		return DigestIdentity(MasterUser, c.Credentials.MasterDigest), nil
	case "agent":
		return DigestIdentity(AgentUser, c.Credentials.AgentDigest), nil
	case "anyone":
		return WorldAnyone, nil
	}
	return Identity{}, fmt.Errorf("unknown role %q", role)
}

// BuildProvider compiles the configured rule table into a Provider. With no
// rules configured the conventional default policy is used.
func (c *Config) BuildProvider() (*Provider, error) {
	if len(c.Rules) == 0 {
		return DefaultProvider(c.Credentials.MasterDigest, c.Credentials.AgentDigest)
	}
	b := NewProviderBuilder()
	if len(c.DefaultACL) == 0 {
		b.DefaultACL(ReadACLUnsafe...)
	}
	for _, ec := range c.DefaultACL {
		perms, err := ParsePerms(ec.Perms)
		if err != nil {
			return nil, fmt.Errorf("default acl entry %s:%s: %w", ec.Scheme, ec.ID, err)
		}
		b.DefaultACL(Entry{Identity: Identity{Scheme: ec.Scheme, ID: ec.ID}, Perms: perms})
	}
	for _, rc := range c.Rules {
		id, err := c.identity(rc.Role)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Pattern, err)
		}
		perms, err := ParsePerms(rc.Perms)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Pattern, err)
		}
		b.Rule(rc.Pattern, perms, id)
	}
	return b.Build()
}

// BuildGroups parses the configured selector expressions into deployment
// groups. Text that is not a selector at all is reported with the group it
// came from.
func (c *Config) BuildGroups() ([]*DeploymentGroup, error) {
	groups := make([]*DeploymentGroup, 0, len(c.Groups))
	for _, gc := range c.Groups {
		b := NewGroupBuilder().ID(gc.ID).Name(gc.Name)
		for _, expr := range gc.Selectors {
			b.Selector(expr)
		}
		g, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", gc.ID, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// ApplyConfig applies engine settings and stores configured groups.
func (e *Engine) ApplyConfig(ctx context.Context, cfg *Config) error {
	if cfg.Engine.ACLCacheNumCounters > 0 {
		if err := e.ConfigureACLCache(cfg.Engine.ACLCacheNumCounters, cfg.Engine.ACLCacheMaxCost, cfg.Engine.ACLCacheBuffer); err != nil {
			return fmt.Errorf("configure acl cache: %w", err)
		}
	}
	groups, err := cfg.BuildGroups()
	if err != nil {
		return err
	}
	if len(groups) > 0 && e.groupStore == nil {
		return fmt.Errorf("config declares groups but engine has no group store")
	}
	for _, g := range groups {
		if _, err := e.groupStore.GetGroup(ctx, g.ID); err != nil {
			if err := e.groupStore.CreateGroup(ctx, g); err != nil {
				return fmt.Errorf("create group %s: %w", g.ID, err)
			}
		} else if err := e.groupStore.UpdateGroup(ctx, g); err != nil {
			return fmt.Errorf("update group %s: %w", g.ID, err)
		}
	}
	return nil
}

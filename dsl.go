package clusteracl

import (
	"fmt"
	"strconv"
	"strings"
)

// DSL Syntax:
// version <n>
// credentials <master_digest> <agent_digest>
// default <scheme>:<id> <perms>
// rule <pattern> <perms> <role>
// group <id> "<name>" <selector>[; <selector>]...
// engine <key>=<value>...
//
// Blank lines and lines starting with '#' are ignored.

type DSLParser struct {
	line int
}

func NewDSLParser() *DSLParser {
	return &DSLParser{}
}

func (p *DSLParser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *DSLParser) Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	for _, raw := range strings.Split(string(data), "\n") {
		p.line++
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		var err error
		switch verb {
		case "version":
			cfg.Version, err = strconv.Atoi(rest)
			if err != nil {
				err = p.errorf("bad version %q", rest)
			}
		case "credentials":
			err = p.parseCredentials(cfg, rest)
		case "default":
			err = p.parseDefault(cfg, rest)
		case "rule":
			err = p.parseRule(cfg, rest)
		case "group":
			err = p.parseGroup(cfg, rest)
		case "engine":
			err = p.parseEngine(cfg, rest)
		default:
			err = p.errorf("unknown directive %q", verb)
		}
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (p *DSLParser) parseCredentials(cfg *Config, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return p.errorf("credentials wants <master_digest> <agent_digest>")
	}
	cfg.Credentials = Credentials{MasterDigest: fields[0], AgentDigest: fields[1]}
	return nil
}

func (p *DSLParser) parseDefault(cfg *Config, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return p.errorf("default wants <scheme>:<id> <perms>")
	}
	scheme, id, ok := strings.Cut(fields[0], ":")
	if !ok {
		return p.errorf("bad principal %q", fields[0])
	}
	cfg.DefaultACL = append(cfg.DefaultACL, EntryConfig{Scheme: scheme, ID: id, Perms: fields[1]})
	return nil
}

func (p *DSLParser) parseRule(cfg *Config, rest string) error {
	fields := strings.Fields(rest)
	if len(fields) != 3 {
		return p.errorf("rule wants <pattern> <perms> <role>")
	}
	cfg.Rules = append(cfg.Rules, RuleConfig{Pattern: fields[0], Perms: fields[1], Role: fields[2]})
	return nil
}

func (p *DSLParser) parseGroup(cfg *Config, rest string) error {
	id, rest, _ := strings.Cut(rest, " ")
	rest = strings.TrimSpace(rest)
	if id == "" || !strings.HasPrefix(rest, `"`) {
		return p.errorf(`group wants <id> "<name>" <selectors>`)
	}
	name, rest, ok := strings.Cut(rest[1:], `"`)
	if !ok {
		return p.errorf("unterminated group name")
	}
	gc := GroupConfig{ID: id, Name: name}
	for _, expr := range strings.Split(rest, ";") {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		gc.Selectors = append(gc.Selectors, expr)
	}
	cfg.Groups = append(cfg.Groups, gc)
	return nil
}

func (p *DSLParser) parseEngine(cfg *Config, rest string) error {
	for _, kv := range strings.Fields(rest) {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return p.errorf("engine wants key=value pairs, got %q", kv)
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return p.errorf("bad engine value %q", kv)
		}
		switch key {
		case "acl_cache_num_counters":
			cfg.Engine.ACLCacheNumCounters = n
		case "acl_cache_max_cost":
			cfg.Engine.ACLCacheMaxCost = n
		case "acl_cache_buffer":
			cfg.Engine.ACLCacheBuffer = n
		default:
			return p.errorf("unknown engine key %q", key)
		}
	}
	return nil
}

type DSLEncoder struct {
	buf []byte
}

func NewDSLEncoder() *DSLEncoder {
	return &DSLEncoder{buf: make([]byte, 0, 1024)}
}

func (e *DSLEncoder) Encode(cfg *Config) ([]byte, error) {
	e.buf = e.buf[:0]

	if cfg.Version != 0 {
		e.line("version %d", cfg.Version)
	}
	if cfg.Credentials != (Credentials{}) {
		e.line("credentials %s %s", cfg.Credentials.MasterDigest, cfg.Credentials.AgentDigest)
	}
	for _, d := range cfg.DefaultACL {
		e.line("default %s:%s %s", d.Scheme, d.ID, d.Perms)
	}
	for _, r := range cfg.Rules {
		e.line("rule %s %s %s", r.Pattern, r.Perms, r.Role)
	}
	for _, g := range cfg.Groups {
		e.line("group %s %q %s", g.ID, g.Name, strings.Join(g.Selectors, "; "))
	}
	if cfg.Engine != (EngineConfig{}) {
		e.line("engine acl_cache_num_counters=%d acl_cache_max_cost=%d acl_cache_buffer=%d",
			cfg.Engine.ACLCacheNumCounters, cfg.Engine.ACLCacheMaxCost, cfg.Engine.ACLCacheBuffer)
	}
	return append([]byte(nil), e.buf...), nil
}

func (e *DSLEncoder) line(format string, args ...any) {
	e.buf = append(e.buf, fmt.Sprintf(format, args...)...)
	e.buf = append(e.buf, '\n')
}

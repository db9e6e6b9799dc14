package clusteracl

import (
	"fmt"
	"regexp"
	"strings"
)

// ============================================================================
// PERMISSIONS & IDENTITIES
// ============================================================================

// Perms is a bitmask over node operations. Bit values are wire-compatible with
// the coordination service's permission encoding.
type Perms int32

const (
	PermRead Perms = 1 << iota
	PermWrite
	PermCreate
	PermDelete
	PermAdmin
)

// PermAll grants create, read, write and delete. ADMIN is excluded: the default
// policy never lets anyone rewrite ACLs on existing nodes.
const PermAll = PermCreate | PermRead | PermWrite | PermDelete

var permLetters = []struct {
	bit    Perms
	letter byte
}{
	{PermCreate, 'c'},
	{PermRead, 'r'},
	{PermWrite, 'w'},
	{PermDelete, 'd'},
	{PermAdmin, 'a'},
}

// String renders the letter form, e.g. "crwd". Zero perms render as "-".
func (p Perms) String() string {
	var b strings.Builder
	for _, pl := range permLetters {
		if p&pl.bit != 0 {
			b.WriteByte(pl.letter)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// ParsePerms parses the letter form produced by Perms.String. "-" and the
// empty string yield zero perms.
func ParsePerms(s string) (Perms, error) {
	if s == "-" {
		return 0, nil
	}
	var p Perms
next:
	for i := 0; i < len(s); i++ {
		for _, pl := range permLetters {
			if s[i] == pl.letter {
				p |= pl.bit
				continue next
			}
		}
		return 0, fmt.Errorf("invalid permission letter %q in %q", string(s[i]), s)
	}
	return p, nil
}

// Identity is an authenticated principal: an authentication scheme name plus an
// opaque credential string produced externally.
type Identity struct {
	Scheme string `json:"scheme" yaml:"scheme"`
	ID     string `json:"id" yaml:"id"`
}

// WorldAnyone is the unauthenticated wildcard principal.
var WorldAnyone = Identity{Scheme: "world", ID: "anyone"}

func (id Identity) String() string {
	return id.Scheme + ":" + id.ID
}

// Entry pairs a principal with the permissions granted to it. An effective ACL
// is a list of entries, one per principal.
type Entry struct {
	Identity Identity `json:"identity" yaml:"identity"`
	Perms    Perms    `json:"perms" yaml:"perms"`
}

// ============================================================================
// RULE-BASED ACL PROVIDER
// ============================================================================

// Rule grants permissions to one principal on every path its pattern fully
// matches. Patterns are anchored: ".*" matches every path, "/config(/.+)?"
// matches the bare node and all descendants, never mere substrings. Rules are
// immutable once built.
type Rule struct {
	pattern  string
	re       *regexp.Regexp
	perms    Perms
	identity Identity
}

// NewRule compiles the rule pattern as a full-string match. A malformed
// pattern is a configuration error and fails here, never at resolution time.
func NewRule(pattern string, perms Perms, identity Identity) (Rule, error) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return Rule{}, fmt.Errorf("compile acl rule pattern %q: %w", pattern, err)
	}
	return Rule{pattern: pattern, re: re, perms: perms, identity: identity}, nil
}

func (r Rule) Pattern() string    { return r.pattern }
func (r Rule) Perms() Perms       { return r.perms }
func (r Rule) Identity() Identity { return r.identity }

func (r Rule) matches(path string) bool { return r.re.MatchString(path) }

// Provider resolves effective ACLs for concrete node paths from a fixed,
// ordered rule list plus a fallback ACL. It holds no mutable state after
// construction and is safe for concurrent use.
type Provider struct {
	rules      []Rule
	defaultACL []Entry
}

// NewProvider copies the rule list and default ACL so later mutation of the
// caller's slices cannot affect resolution.
func NewProvider(rules []Rule, defaultACL []Entry) *Provider {
	p := &Provider{
		rules:      make([]Rule, len(rules)),
		defaultACL: make([]Entry, len(defaultACL)),
	}
	copy(p.rules, rules)
	copy(p.defaultACL, defaultACL)
	return p
}

// Rules returns a copy of the rule list.
func (p *Provider) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// DefaultACL returns a copy of the fallback ACL.
func (p *Provider) DefaultACL() []Entry {
	out := make([]Entry, len(p.defaultACL))
	copy(out, p.defaultACL)
	return out
}

// Resolve computes the effective ACL for a concrete path. Every rule whose
// pattern fully matches contributes its perms, OR-ed into the entry for its
// principal. The union is commutative and idempotent, so the resulting
// principal->perms mapping does not depend on rule order; entries are listed
// in first-match order to keep the output deterministic. When no rule matches,
// the default ACL is returned as the sole content.
func (p *Provider) Resolve(path string) []Entry {
	merged := make(map[Identity]Perms, len(p.rules))
	order := make([]Identity, 0, len(p.rules))
	for _, r := range p.rules {
		if !r.matches(path) {
			continue
		}
		if _, ok := merged[r.identity]; !ok {
			order = append(order, r.identity)
		}
		merged[r.identity] |= r.perms
	}
	if len(order) == 0 {
		return p.DefaultACL()
	}
	out := make([]Entry, 0, len(order))
	for _, id := range order {
		out = append(out, Entry{Identity: id, Perms: merged[id]})
	}
	return out
}

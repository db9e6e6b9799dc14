package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/oarkflow/clusteracl"
	"github.com/oarkflow/clusteracl/stores"
)

func newProvider(b *testing.B) *clusteracl.Provider {
	provider, err := clusteracl.DefaultProvider("master-digest", "agent-digest")
	if err != nil {
		b.Fatalf("build provider: %v", err)
	}
	return provider
}

func BenchmarkProviderResolve(b *testing.B) {
	provider := newProvider(b)
	path := clusteracl.StatusHostJobs("web-1")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = provider.Resolve(path)
	}
}

func BenchmarkEngineResolveCached(b *testing.B) {
	eng, err := clusteracl.NewEngine(
		newProvider(b),
		stores.NewMemoryGroupStore(),
		stores.NewMemoryHostLabelStore(),
	)
	if err != nil {
		b.Fatalf("build engine: %v", err)
	}
	if err := eng.ConfigureACLCache(10000, 1<<20, 64); err != nil {
		b.Fatalf("configure cache: %v", err)
	}
	ctx := context.Background()
	path := clusteracl.StatusHostJobs("web-1")

	// Warm the cache before timing.
	_ = eng.ResolveACL(ctx, path)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = eng.ResolveACL(ctx, path)
	}
}

// BenchmarkCasbinResolve measures the same path-pattern policy expressed as a
// casbin regex-matcher model, for comparison.
func BenchmarkCasbinResolve(b *testing.B) {
	modelText := `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && regexMatch(r.obj, p.obj) && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		b.Fatalf("casbin model: %v", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		b.Fatalf("casbin enforcer: %v", err)
	}
	_, _ = e.AddPolicy("agent", "^/status/hosts/[^/]+/jobs$", "create")
	_, _ = e.AddPolicy("agent", "^.*$", "read")
	_, _ = e.AddPolicy("master", "^.*$", "write")

	path := "/status/hosts/web-1/jobs"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = e.Enforce("agent", path, "create")
	}
}

func BenchmarkParseSelector(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = clusteracl.ParseSelector("pool in (a, b, c)")
	}
}

func BenchmarkSelectorMatches(b *testing.B) {
	sel, err := clusteracl.ParseSelector("pool in (a, b, c)")
	if err != nil || sel == nil {
		b.Fatalf("parse selector: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = sel.Matches("b")
	}
}

func BenchmarkMatchHosts(b *testing.B) {
	hosts := make(map[string]map[string]string, 1000)
	for i := 0; i < 1000; i++ {
		labels := map[string]string{"role": "db", "pool": "a"}
		if i%2 == 0 {
			labels["role"] = "web"
		}
		hosts[fmt.Sprintf("host-%d", i)] = labels
	}
	selectors := []*clusteracl.HostSelector{
		mustSelector(b, "role = web"),
		mustSelector(b, "pool in (a, b)"),
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = clusteracl.MatchHosts(hosts, selectors)
	}
}

func mustSelector(b *testing.B, expr string) *clusteracl.HostSelector {
	sel, err := clusteracl.ParseSelector(expr)
	if err != nil || sel == nil {
		b.Fatalf("bad selector %q: %v", expr, err)
	}
	return sel
}

package stores

import (
	"context"
	"reflect"
	"testing"

	"github.com/oarkflow/clusteracl"
)

func TestMemoryGroupStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryGroupStore()

	g, err := clusteracl.NewGroupBuilder().ID("g1").Name("one").Selector("role = web").Build()
	if err != nil {
		t.Fatalf("build group: %v", err)
	}
	if err := s.CreateGroup(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateGroup(ctx, g); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}

	back, err := s.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back.Name != "one" || len(back.Selectors) != 1 {
		t.Fatalf("unexpected group: %+v", back)
	}

	// mutation of the returned copy must not leak into the store
	back.Name = "mutated"
	again, _ := s.GetGroup(ctx, "g1")
	if again.Name != "one" {
		t.Fatalf("store leaked a mutable reference")
	}

	g2, _ := clusteracl.NewGroupBuilder().ID("g0").Name("zero").Build()
	if err := s.CreateGroup(ctx, g2); err != nil {
		t.Fatalf("create g0: %v", err)
	}
	all, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "g0" || all[1].ID != "g1" {
		t.Fatalf("expected sorted list, got %v", all)
	}

	g.Name = "renamed"
	if err := s.UpdateGroup(ctx, g); err != nil {
		t.Fatalf("update: %v", err)
	}
	back, _ = s.GetGroup(ctx, "g1")
	if back.Name != "renamed" {
		t.Fatalf("update did not apply")
	}
	if err := s.UpdateGroup(ctx, &clusteracl.DeploymentGroup{ID: "ghost"}); err == nil {
		t.Fatalf("expected update of missing group to fail")
	}

	if err := s.DeleteGroup(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetGroup(ctx, "g1"); err == nil {
		t.Fatalf("expected get after delete to fail")
	}
}

func TestMemoryHostLabelStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryHostLabelStore()

	if _, err := s.GetLabels(ctx, "web1"); err == nil {
		t.Fatalf("expected unknown host error")
	}

	labels := map[string]string{"role": "web", "site": "lon"}
	if err := s.SetLabels(ctx, "web1", labels); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetLabels(ctx, "db1", map[string]string{"role": "db"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.GetLabels(ctx, "web1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, labels) {
		t.Fatalf("labels = %v, want %v", got, labels)
	}

	// stored labels must be isolated from the caller's map
	labels["role"] = "mutated"
	got, _ = s.GetLabels(ctx, "web1")
	if got["role"] != "web" {
		t.Fatalf("store aliased the caller's label map")
	}

	hosts, err := s.ListHosts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(hosts, []string{"db1", "web1"}) {
		t.Fatalf("hosts = %v", hosts)
	}

	if err := s.DeleteHost(ctx, "web1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetLabels(ctx, "web1"); err == nil {
		t.Fatalf("expected error after delete")
	}
}

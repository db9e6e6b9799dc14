package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/oarkflow/clusteracl"
	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"
)

func newSQLStore(t *testing.T) *SQLGroupStore {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	db := squealx.NewDb(sqlDB, "sqlite", "testdb")

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLGroupStore(db)
}

func TestSQLGroupStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	g, err := clusteracl.NewGroupBuilder().
		ID("web-lon").
		Name("london web hosts").
		Selector("role = web").
		Selector("site in (lon, sto)").
		Build()
	if err != nil {
		t.Fatalf("build group: %v", err)
	}
	g.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.CreateGroup(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	back, err := store.GetGroup(ctx, "web-lon")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back.Name != "london web hosts" || len(back.Selectors) != 2 {
		t.Fatalf("unexpected group: %+v", back)
	}
	if !back.Selectors[0].Equal(g.Selectors[0]) || !back.Selectors[1].Equal(g.Selectors[1]) {
		t.Fatalf("selectors changed across persistence: %v vs %v", back.Selectors, g.Selectors)
	}
	if back.CreatedAt.IsZero() {
		t.Fatalf("created_at was not persisted")
	}

	if _, err := store.GetGroup(ctx, "ghost"); err == nil {
		t.Fatalf("expected missing group error")
	}
}

func TestSQLGroupStoreUpdateDeleteList(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)

	for _, id := range []string{"g2", "g1"} {
		g, err := clusteracl.NewGroupBuilder().ID(id).Name(id).Selector("role = web").Build()
		if err != nil {
			t.Fatalf("build %s: %v", id, err)
		}
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	all, err := store.ListGroups(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "g1" || all[1].ID != "g2" {
		t.Fatalf("expected ordered list, got %v", all)
	}

	g1 := all[0]
	g1.Name = "renamed"
	g1.Selectors = append(g1.Selectors, mustSelector(t, "site != ash"))
	if err := store.UpdateGroup(ctx, g1); err != nil {
		t.Fatalf("update: %v", err)
	}
	back, err := store.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back.Name != "renamed" || len(back.Selectors) != 2 {
		t.Fatalf("update did not persist: %+v", back)
	}

	if err := store.DeleteGroup(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetGroup(ctx, "g1"); err == nil {
		t.Fatalf("expected get after delete to fail")
	}
}

func mustSelector(t *testing.T, text string) *clusteracl.HostSelector {
	t.Helper()
	s, err := clusteracl.ParseSelector(text)
	if err != nil || s == nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return s
}

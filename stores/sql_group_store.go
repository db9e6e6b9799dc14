package stores

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oarkflow/clusteracl"
	"github.com/oarkflow/squealx"
)

// SQLGroupStore persists deployment groups in SQL (squealx). Selectors are
// stored as a JSON array using the selector wire form.
type SQLGroupStore struct {
	db *squealx.DB
}

func NewSQLGroupStore(db *squealx.DB) *SQLGroupStore {
	return &SQLGroupStore{db: db}
}

func (s *SQLGroupStore) CreateGroup(ctx context.Context, g *clusteracl.DeploymentGroup) error {
	sels, err := json.Marshal(g.Selectors)
	if err != nil {
		return fmt.Errorf("marshal selectors for group %s: %w", g.ID, err)
	}
	q := `INSERT INTO deployment_groups(id, name, selectors_json, created_at) VALUES(:id, :name, :selectors_json, :created_at)`
	_, err = s.db.NamedExecContext(ctx, q, map[string]any{
		"id":             g.ID,
		"name":           g.Name,
		"selectors_json": string(sels),
		"created_at":     g.CreatedAt,
	})
	return err
}

func (s *SQLGroupStore) UpdateGroup(ctx context.Context, g *clusteracl.DeploymentGroup) error {
	sels, err := json.Marshal(g.Selectors)
	if err != nil {
		return fmt.Errorf("marshal selectors for group %s: %w", g.ID, err)
	}
	q := `UPDATE deployment_groups SET name = :name, selectors_json = :selectors_json WHERE id = :id`
	_, err = s.db.NamedExecContext(ctx, q, map[string]any{
		"id":             g.ID,
		"name":           g.Name,
		"selectors_json": string(sels),
	})
	return err
}

func (s *SQLGroupStore) DeleteGroup(ctx context.Context, id string) error {
	q := `DELETE FROM deployment_groups WHERE id = :id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{"id": id})
	return err
}

func (s *SQLGroupStore) GetGroup(ctx context.Context, id string) (*clusteracl.DeploymentGroup, error) {
	q := `SELECT id, name, selectors_json, created_at FROM deployment_groups WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, fmt.Errorf("group not found: %s", id)
	}
	return scanGroup(r)
}

func (s *SQLGroupStore) ListGroups(ctx context.Context) ([]*clusteracl.DeploymentGroup, error) {
	q := `SELECT id, name, selectors_json, created_at FROM deployment_groups ORDER BY id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*clusteracl.DeploymentGroup, 0)
	for r.Next() {
		g, err := scanGroup(r)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(r rowScanner) (*clusteracl.DeploymentGroup, error) {
	var id, name, selectorsJSON string
	var createdRaw interface{}
	if err := r.Scan(&id, &name, &selectorsJSON, &createdRaw); err != nil {
		return nil, err
	}
	g := &clusteracl.DeploymentGroup{ID: id, Name: name}
	if err := json.Unmarshal([]byte(selectorsJSON), &g.Selectors); err != nil {
		return nil, fmt.Errorf("unmarshal selectors for group %s: %w", id, err)
	}
	if createdRaw != nil {
		scanTime(createdRaw, &g.CreatedAt)
	}
	return g, nil
}

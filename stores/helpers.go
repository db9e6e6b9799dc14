package stores

import (
	"time"

	"github.com/oarkflow/clusteracl"
	"github.com/oarkflow/date"
)

func parseFlexibleTime(s string) (time.Time, error) {
	return date.Parse(s)
}

func cloneGroup(g *clusteracl.DeploymentGroup) *clusteracl.DeploymentGroup {
	if g == nil {
		return nil
	}
	dup := *g
	if g.Selectors != nil {
		dup.Selectors = make([]*clusteracl.HostSelector, len(g.Selectors))
		copy(dup.Selectors, g.Selectors)
	}
	return &dup
}

func cloneLabels(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	dup := make(map[string]string, len(m))
	for k, v := range m {
		dup[k] = v
	}
	return dup
}

func scanTime(raw interface{}, dst *time.Time) {
	switch v := raw.(type) {
	case time.Time:
		*dst = v
	case string:
		if t, err := parseFlexibleTime(v); err == nil {
			*dst = t
		}
	case []byte:
		if t, err := parseFlexibleTime(string(v)); err == nil {
			*dst = t
		}
	}
}

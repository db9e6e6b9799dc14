package stores

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisHostLabelStore keeps host labels in Redis hashes (key: hostlabels:{host})
// with the set of known hosts under hostlabels:hosts.
type RedisHostLabelStore struct {
	client   *redis.Client
	keyFmt   string
	indexKey string
}

func NewRedisHostLabelStore(client *redis.Client) *RedisHostLabelStore {
	return &RedisHostLabelStore{client: client, keyFmt: "hostlabels:%s", indexKey: "hostlabels:hosts"}
}

func (r *RedisHostLabelStore) key(host string) string {
	return fmt.Sprintf(r.keyFmt, host)
}

func (r *RedisHostLabelStore) SetLabels(ctx context.Context, host string, labels map[string]string) error {
	// replace, not merge: stale labels from a previous registration must go
	if err := r.client.Del(ctx, r.key(host)).Err(); err != nil {
		return err
	}
	if len(labels) > 0 {
		if err := r.client.HSet(ctx, r.key(host), labels).Err(); err != nil {
			return err
		}
	}
	return r.client.SAdd(ctx, r.indexKey, host).Err()
}

func (r *RedisHostLabelStore) GetLabels(ctx context.Context, host string) (map[string]string, error) {
	known, err := r.client.SIsMember(ctx, r.indexKey, host).Result()
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("host not found: %s", host)
	}
	return r.client.HGetAll(ctx, r.key(host)).Result()
}

func (r *RedisHostLabelStore) DeleteHost(ctx context.Context, host string) error {
	if err := r.client.SRem(ctx, r.indexKey, host).Err(); err != nil {
		return err
	}
	return r.client.Del(ctx, r.key(host)).Err()
}

func (r *RedisHostLabelStore) ListHosts(ctx context.Context) ([]string, error) {
	hosts, err := r.client.SMembers(ctx, r.indexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(hosts)
	return hosts, nil
}

package store

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/searchkit/core"
)

// Redis key 布局：
//
//	searchkit:events:<variant>  有序集合，score = 事件时间戳(纳秒)，member = 事件 JSON
//	searchkit:events:variants   出现过事件的变体名集合
const (
	redisEventKeyPrefix = "searchkit:events:"
	redisVariantsSetKey = "searchkit:events:variants"
)

// RedisStore 是 Redis 实现的 Store + EventStore。
// 生产环境常用：事件日志经由 ZADD 并发追加不丢写，按时间窗读取与清理
// 直接落在 sorted set 的 score 范围操作上。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

// ===== core.Store =====

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return make(map[string][]byte), nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for i, k := range keys {
		if vals[i] != nil {
			if s, ok := vals[i].(string); ok {
				result[k] = []byte(s)
			}
		}
	}
	return result, nil
}

func (r *RedisStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	pipe := r.client.Pipeline()
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}

	for k, v := range kvs {
		pipe.Set(ctx, k, v, expiration)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// ===== core.EventStore =====

var _ core.EventStore = (*RedisStore)(nil)
var _ core.Store = (*RedisStore)(nil)

func (r *RedisStore) Append(ctx context.Context, event *core.ExperimentEvent) error {
	if event == nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: nil event")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, redisEventKeyPrefix+event.Variant, redis.Z{
		Score:  float64(event.Timestamp.UnixNano()),
		Member: string(data),
	})
	pipe.SAdd(ctx, redisVariantsSetKey, event.Variant)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Events(ctx context.Context, variant string, since time.Time) ([]*core.ExperimentEvent, error) {
	members, err := r.client.ZRangeByScore(ctx, redisEventKeyPrefix+variant, &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixNano(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*core.ExperimentEvent, 0, len(members))
	for _, m := range members {
		var ev core.ExperimentEvent
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			// 损坏的事件跳过，不让一条坏记录阻断整个聚合
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

func (r *RedisStore) Variants(ctx context.Context) ([]string, error) {
	names, err := r.client.SMembers(ctx, redisVariantsSetKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	names, err := r.Variants(ctx)
	if err != nil {
		return 0, err
	}

	max := strconv.FormatInt(before.UnixNano()-1, 10)
	var pruned int64
	for _, variant := range names {
		n, err := r.client.ZRemRangeByScore(ctx, redisEventKeyPrefix+variant, "-inf", max).Result()
		if err != nil {
			return pruned, err
		}
		pruned += n
	}
	return pruned, nil
}

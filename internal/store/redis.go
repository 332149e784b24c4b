package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"persona-board/internal/syncstore"
)

const redisLogCap = 10000

// RedisBackend shares one widget between editors. Every map scope is a hash
// (one field per key, so writers to different profiles never conflict), scalar
// values live in a single hash, and each flush is published on the changes
// channel.
//
// Keys under namespace ns:
//
//	ns:map:<scope>  hash    map entries
//	ns:scopes       set     known map scopes
//	ns:values       hash    whole-value scalars
//	ns:seq          string  change sequence counter
//	ns:log          list    change log (capped)
//	ns:changes      pubsub  change feed
//	ns:widget_id    string  widget id
type RedisBackend struct {
	rdb *redis.Client
	ns  string
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr, namespace string) (*RedisBackend, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("redis: empty addr")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedis(rdb, namespace), nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, namespace string) *RedisBackend {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisBackend{rdb: rdb, ns: namespace}
}

func (b *RedisBackend) key(parts ...string) string {
	return b.ns + ":" + strings.Join(parts, ":")
}

func (b *RedisBackend) WidgetID(ctx context.Context) (string, error) {
	k := b.key("widget_id")
	if err := b.rdb.SetNX(ctx, k, uuid.NewString(), 0).Err(); err != nil {
		return "", err
	}
	return b.rdb.Get(ctx, k).Result()
}

func (b *RedisBackend) Load(ctx context.Context) (syncstore.Snapshot, error) {
	snap := syncstore.Snapshot{
		Maps:   map[string]map[string]json.RawMessage{},
		Values: map[string]json.RawMessage{},
	}
	scopes, err := b.rdb.SMembers(ctx, b.key("scopes")).Result()
	if err != nil {
		return snap, err
	}
	for _, scope := range scopes {
		fields, err := b.rdb.HGetAll(ctx, b.key("map", scope)).Result()
		if err != nil {
			return snap, err
		}
		m := make(map[string]json.RawMessage, len(fields))
		for k, v := range fields {
			m[k] = json.RawMessage(v)
		}
		snap.Maps[scope] = m
	}
	values, err := b.rdb.HGetAll(ctx, b.key("values")).Result()
	if err != nil {
		return snap, err
	}
	for k, v := range values {
		snap.Values[k] = json.RawMessage(v)
	}
	return snap, nil
}

func (b *RedisBackend) Apply(ctx context.Context, changes []syncstore.Change) error {
	if len(changes) == 0 {
		return nil
	}
	last, err := b.rdb.IncrBy(ctx, b.key("seq"), int64(len(changes))).Result()
	if err != nil {
		return err
	}
	first := last - int64(len(changes)) + 1
	now := time.Now().UTC()

	records := make([]string, 0, len(changes))
	_, err = b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, c := range changes {
			switch c.Op {
			case syncstore.OpMapSet:
				pipe.SAdd(ctx, b.key("scopes"), c.Scope)
				pipe.HSet(ctx, b.key("map", c.Scope), c.Key, string(c.Value))
			case syncstore.OpMapDelete:
				pipe.HDel(ctx, b.key("map", c.Scope), c.Key)
			case syncstore.OpValueSet:
				pipe.HSet(ctx, b.key("values"), c.Key, string(c.Value))
			default:
				return errors.New("unknown change op: " + string(c.Op))
			}
			raw, err := json.Marshal(ChangeRecord{Seq: first + int64(i), ID: uuid.NewString(), Change: c, At: now})
			if err != nil {
				return err
			}
			records = append(records, string(raw))
			pipe.RPush(ctx, b.key("log"), string(raw))
		}
		pipe.LTrim(ctx, b.key("log"), -redisLogCap, -1)
		return nil
	})
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := b.rdb.Publish(ctx, b.key("changes"), r).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (b *RedisBackend) Changes(ctx context.Context, since int64, limit int) ([]ChangeRecord, error) {
	raw, err := b.rdb.LRange(ctx, b.key("log"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var out []ChangeRecord
	for _, s := range raw {
		var r ChangeRecord
		if err := json.Unmarshal([]byte(s), &r); err != nil {
			continue
		}
		if r.Seq <= since {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Watch subscribes to the change feed until ctx is done.
func (b *RedisBackend) Watch(ctx context.Context, fn func(ChangeRecord)) error {
	sub := b.rdb.Subscribe(ctx, b.key("changes"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var r ChangeRecord
			if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
				continue
			}
			fn(r)
		}
	}
}

// Reset removes every key of the namespace.
func (b *RedisBackend) Reset(ctx context.Context) error {
	scopes, err := b.rdb.SMembers(ctx, b.key("scopes")).Result()
	if err != nil {
		return err
	}
	keys := []string{b.key("scopes"), b.key("values"), b.key("seq"), b.key("log"), b.key("widget_id")}
	for _, s := range scopes {
		keys = append(keys, b.key("map", s))
	}
	return b.rdb.Del(ctx, keys...).Err()
}

func (b *RedisBackend) Close() error { return b.rdb.Close() }

package budget

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ledgerScript atomically reads-or-initializes a ledger hash and applies a
// meter delta in one round trip, mirroring the kernel's rate-limiter token
// bucket pattern but for monotonically increasing usage counters rather
// than a decaying bucket.
//
// KEYS[1] = ledger key ("budget:<task>")
// ARGV[1..3] = token/time/request deltas to add
// ARGV[4..6] = caps to install if the hash doesn't exist yet (0 = uncapped)
var ledgerScript = redis.NewScript(`
local key = KEYS[1]
local dtokens = tonumber(ARGV[1])
local dmillis = tonumber(ARGV[2])
local dreqs = tonumber(ARGV[3])

local exists = redis.call("EXISTS", key)
if exists == 0 then
    redis.call("HMSET", key, "token_cap", ARGV[4], "time_cap_millis", ARGV[5], "request_cap", ARGV[6],
        "tokens_used", 0, "time_used_millis", 0, "requests_used", 0)
end

redis.call("HINCRBY", key, "tokens_used", dtokens)
redis.call("HINCRBY", key, "time_used_millis", dmillis)
redis.call("HINCRBY", key, "requests_used", dreqs)

return redis.call("HMGET", key, "token_cap", "time_cap_millis", "request_cap", "tokens_used", "time_used_millis", "requests_used")
`)

// RedisStorage implements Storage against a Redis hash per task.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(addr, password string, db int) *RedisStorage {
	return &RedisStorage{client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

func (s *RedisStorage) key(task string) string { return fmt.Sprintf("budget:%s", task) }

func (s *RedisStorage) Get(ctx context.Context, task string) (*Ledger, error) {
	vals, err := s.client.HGetAll(ctx, s.key(task)).Result()
	if err != nil {
		return nil, fmt.Errorf("budget: redis get: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	l := &Ledger{TaskID: task}
	scanInt64(vals, "token_cap", &l.TokenCap)
	scanInt64(vals, "time_cap_millis", &l.TimeCapMillis)
	scanInt64(vals, "request_cap", &l.RequestCap)
	scanInt64(vals, "tokens_used", &l.TokensUsed)
	scanInt64(vals, "time_used_millis", &l.TimeUsedMillis)
	scanInt64(vals, "requests_used", &l.RequestsUsed)
	return l, nil
}

func (s *RedisStorage) Set(ctx context.Context, l *Ledger) error {
	return s.client.HSet(ctx, s.key(l.TaskID), map[string]interface{}{
		"token_cap":        l.TokenCap,
		"time_cap_millis":  l.TimeCapMillis,
		"request_cap":      l.RequestCap,
		"tokens_used":      l.TokensUsed,
		"time_used_millis": l.TimeUsedMillis,
		"requests_used":    l.RequestsUsed,
	}).Err()
}

// Meter applies a delta atomically via ledgerScript, installing caps if the
// ledger is being created for the first time.
func (s *RedisStorage) Meter(ctx context.Context, task string, d Delta, defaultCaps Ledger) (*Ledger, error) {
	res, err := ledgerScript.Run(ctx, s.client, []string{s.key(task)},
		d.Tokens, d.Millis, d.Requests,
		defaultCaps.TokenCap, defaultCaps.TimeCapMillis, defaultCaps.RequestCap,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("budget: redis meter: %w", err)
	}
	fields, ok := res.([]interface{})
	if !ok || len(fields) != 6 {
		return nil, fmt.Errorf("budget: unexpected redis meter response")
	}
	l := &Ledger{TaskID: task}
	l.TokenCap = toInt64(fields[0])
	l.TimeCapMillis = toInt64(fields[1])
	l.RequestCap = toInt64(fields[2])
	l.TokensUsed = toInt64(fields[3])
	l.TimeUsedMillis = toInt64(fields[4])
	l.RequestsUsed = toInt64(fields[5])
	return l, nil
}

func scanInt64(vals map[string]string, key string, dst *int64) {
	if v, ok := vals[key]; ok {
		fmt.Sscanf(v, "%d", dst)
	}
}

func toInt64(v interface{}) int64 {
	switch x := v.(type) {
	case string:
		var n int64
		fmt.Sscanf(x, "%d", &n)
		return n
	case int64:
		return x
	default:
		return 0
	}
}

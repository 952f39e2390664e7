package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"imgclassd/pkg/types"
)

// appendScript allocates the id and pushes the record in one atomic step so
// list order always matches id order. ARGV[1] is the record JSON without id.
var appendScript = redis.NewScript(`
local id = redis.call('INCR', KEYS[2])
local body = ARGV[1]
local rec = '{"id":' .. id
if string.len(body) > 2 then
  rec = rec .. ',' .. string.sub(body, 2)
else
  rec = rec .. '}'
end
redis.call('RPUSH', KEYS[1], rec)
return id
`)

// RedisStore keeps records as JSON entries of a Redis list.
type RedisStore struct {
	client *redis.Client
	key    string
	seqKey string
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, addr, password string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return NewRedis(client, key), nil
}

// NewRedis wraps an existing client. Records live under key; the id counter
// under key+":seq".
func NewRedis(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key, seqKey: key + ":seq"}
}

type redisRecord struct {
	Filename   string  `json:"filename"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

func (s *RedisStore) Append(ctx context.Context, r types.PredictionResult) (types.Prediction, error) {
	body, err := json.Marshal(redisRecord{Filename: r.Filename, Prediction: r.Label, Confidence: r.Confidence})
	if err != nil {
		return types.Prediction{}, fmt.Errorf("redis: marshal: %w", err)
	}
	id, err := appendScript.Run(ctx, s.client, []string{s.key, s.seqKey}, string(body)).Int64()
	if err != nil {
		return types.Prediction{}, fmt.Errorf("redis: append: %w", err)
	}
	return types.Prediction{ID: id, Filename: r.Filename, Prediction: r.Label, Confidence: r.Confidence}, nil
}

func (s *RedisStore) List(ctx context.Context) ([]types.Prediction, error) {
	vals, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: lrange: %w", err)
	}
	out := make([]types.Prediction, 0, len(vals))
	for _, v := range vals {
		var p types.Prediction
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, fmt.Errorf("redis: decode record: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

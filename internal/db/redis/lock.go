package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/commu-practical/helpmap/internal/db"
)

// delIfEqualScript deletes KEYS[1] only while it still holds ARGV[1].
const delIfEqualScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// SetNX runs SET key value NX PX ttl.
func (s *Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	cmd := s.b().Set().Key(key).Value(value).Nx().PxMilliseconds(ttl.Milliseconds()).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpSetNX, Err: err}
	}
	return true, nil
}

// DelIfEqual atomically deletes key if its value equals value.
func (s *Store) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	cmd := s.b().Eval().Script(delIfEqualScript).Numkeys(1).Key(key).Arg(value).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpEval, Err: err}
	}
	return n == 1, nil
}

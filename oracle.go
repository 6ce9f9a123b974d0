package greyfilter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

//go:embed redis.lua
var redisLua string

var redisScript = redis.NewScript(redisLua)

// Oracle decides whether the pair behind keys is still greylisted.
type Oracle interface {
	Decide(context.Context, KeyPair) (Decision, error)
}

// RedisOracle runs the greylist script atomically on a redis server.
type RedisOracle struct {
	client redis.Scripter
}

func NewRedisOracle(client redis.Scripter) *RedisOracle {
	return &RedisOracle{client: client}
}

func (o *RedisOracle) Decide(ctx context.Context, keys KeyPair) (Decision, error) {
	code, err := redisScript.Run(ctx, o.client, []string{keys.Grey, keys.White}).Int64()
	if err != nil {
		return Decision{Outcome: Allow}, fmt.Errorf("greylist script error: %w", err)
	}
	return DecisionFromCode(code), nil
}

// RedisOptions turns HOST:PORT or an absolute socket path into client
// options.
func RedisOptions(addr string) (*redis.Options, error) {
	if len(addr) == 0 {
		return nil, errors.New("missing redis address, please set `-redis`")
	}

	opts := &redis.Options{Network: "tcp", Addr: addr}
	if strings.HasPrefix(addr, "/") {
		opts.Network = "unix"
	}

	return opts, nil
}

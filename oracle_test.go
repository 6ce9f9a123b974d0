package greyfilter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestOracle(t *testing.T) (*RedisOracle, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rds := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rds.Close() })

	return NewRedisOracle(rds), mr
}

func TestRedisOracleLifecycle(t *testing.T) {
	o, mr := newTestOracle(t)
	ctx := context.Background()
	keys := NewFingerprint([]byte("sender@example.com"), []byte("recipient@example.com")).Keys()

	var steps = []struct {
		name    string
		advance time.Duration
		code    int64
		outcome Outcome
	}{
		{name: "first seen", code: CodeFirstSeen, outcome: Defer},
		{name: "immediate retry", advance: time.Minute, code: CodeStillGreylisted, outcome: Defer},
		{name: "retry after window", advance: 5 * time.Minute, code: CodePassed, outcome: Allow},
		{name: "later mail", advance: 48 * time.Hour, code: CodeWhitelisted, outcome: Allow},
	}

	for _, v := range steps {
		mr.FastForward(v.advance)
		got, err := o.Decide(ctx, keys)
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", v.name, err)
		}
		if got.Code != v.code {
			t.Errorf("%s: expected code %d, got %d", v.name, v.code, got.Code)
		}
		if got.Outcome != v.outcome {
			t.Errorf("%s: expected %s, got %s", v.name, v.outcome, got.Outcome)
		}
	}

	if ttl := mr.TTL(keys.White); ttl <= 604000*time.Second {
		t.Errorf("expected white record to live about a week, got %s", ttl)
	}
}

func TestRedisOracleGreyRecordRemoved(t *testing.T) {
	o, mr := newTestOracle(t)
	ctx := context.Background()
	keys := NewFingerprint([]byte("sender@example.com"), []byte("recipient@example.com")).Keys()

	if got, _ := o.Decide(ctx, keys); got.Outcome != Defer {
		t.Fatalf("expected defer, got %s", got.Outcome)
	}
	if !mr.Exists(keys.Grey) {
		t.Fatal("expected grey record to exist")
	}

	mr.Del(keys.Grey)

	got, err := o.Decide(ctx, keys)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Outcome != Allow {
		t.Errorf("expected allow, got %s", got.Outcome)
	}
	if v, _ := mr.Get(keys.White); v != "ok" {
		t.Errorf("expected ok, got %s", v)
	}
}

func TestRedisOracleForgetsAfterFullExpiry(t *testing.T) {
	o, mr := newTestOracle(t)
	ctx := context.Background()
	keys := NewFingerprint([]byte("sender@example.com"), []byte("recipient@example.com")).Keys()

	if got, _ := o.Decide(ctx, keys); got.Code != CodeFirstSeen {
		t.Fatalf("expected %d, got %d", CodeFirstSeen, got.Code)
	}

	mr.FlushAll()

	got, err := o.Decide(ctx, keys)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Code != CodeFirstSeen {
		t.Errorf("expected %d, got %d", CodeFirstSeen, got.Code)
	}

	mr.FastForward(25 * time.Hour)

	got, _ = o.Decide(ctx, keys)
	if got.Code != CodeFirstSeen {
		t.Errorf("expected pending pair to be forgotten after a day, got %d", got.Code)
	}
}

func TestRedisOracleStoreDown(t *testing.T) {
	o, mr := newTestOracle(t)
	mr.Close()

	got, err := o.Decide(context.Background(), Fingerprint("x").Keys())
	if err == nil {
		t.Fatal("expected an error from a closed store")
	}
	if got.Outcome != Allow {
		t.Errorf("expected allow, got %s", got.Outcome)
	}
}

func TestRedisOptions(t *testing.T) {
	var tests = []struct {
		addr        string
		network     string
		expectError string
	}{
		{addr: "localhost:6379", network: "tcp"},
		{addr: "[::1]:6379", network: "tcp"},
		{addr: "/var/run/redis/redis.sock", network: "unix"},
		{addr: "", expectError: "missing redis address, please set `-redis`"},
	}

	for _, v := range tests {
		got, err := RedisOptions(v.addr)
		if v.expectError != "" {
			if err == nil || err.Error() != v.expectError {
				t.Errorf("expected %s, got %v", v.expectError, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error: %s", err)
			continue
		}
		if got.Network != v.network || got.Addr != v.addr {
			t.Errorf("expected %s %s, got %s %s", v.network, v.addr, got.Network, got.Addr)
		}
	}
}

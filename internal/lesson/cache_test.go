package lesson

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

type stubSearcher struct {
	out   string
	err   error
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, query string) (string, error) {
	s.calls++
	return s.out, s.err
}

// The cache must degrade to direct retrieval when Redis is unreachable.
func TestCachedRetrieverDegradesWithoutRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	inner := &stubSearcher{out: "Sarali Varisai excerpt"}
	c := NewCachedRetriever(inner, rdb, 0)

	out, err := c.Search(context.Background(), "sarali")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out != inner.out {
		t.Fatalf("got %q, want inner result", out)
	}
	if inner.calls != 1 {
		t.Fatalf("inner searcher calls = %d, want 1", inner.calls)
	}
}

func TestCachedRetrieverPropagatesNotFound(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	inner := &stubSearcher{err: ErrNotFound}
	c := NewCachedRetriever(inner, rdb, 0)

	if _, err := c.Search(context.Background(), "gamaka"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

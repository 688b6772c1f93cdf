package completioncache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/mapdex/internal/domain"
)

func TestComplete_CacheMiss(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Text: "Stock keeping unit.", PromptTokens: 40}}
	cc, ms := newTestCachedCompleter(t, inner)

	var setKey, setValue string
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		setKey, setValue = key, string(value)
		return nil
	}

	res, err := cc.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Stock keeping unit." || res.PromptTokens != 40 {
		t.Errorf("result = %+v", res)
	}
	if !strings.HasPrefix(setKey, "mapdex:completion_cache:gpt-4o-mini:") {
		t.Errorf("key = %q", setKey)
	}
	if setValue != "Stock keeping unit." {
		t.Errorf("cached value = %q", setValue)
	}
}

func TestComplete_CacheHit(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Text: "fresh"}}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte("cached"), nil
	}

	res, err := cc.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "cached" || res.PromptTokens != 0 {
		t.Errorf("result = %+v", res)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times on hit", inner.calls)
	}
}

func TestComplete_StoreErrorsFallThrough(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Text: "fresh"}}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}
	ms.setFn = func(context.Context, string, []byte) error {
		return errors.New("connection reset")
	}

	res, err := cc.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "fresh" || inner.calls != 1 {
		t.Errorf("result = %+v, calls = %d", res, inner.calls)
	}
}

func TestComplete_InnerError(t *testing.T) {
	inner := &mockCompleter{err: domain.ErrAssistantProviderError}
	cc, ms := newTestCachedCompleter(t, inner)
	ms.setFn = func(context.Context, string, []byte) error {
		t.Error("failed completion must not be cached")
		return nil
	}

	if _, err := cc.Complete(context.Background(), "sys", "prompt"); !errors.Is(err, domain.ErrAssistantProviderError) {
		t.Errorf("err = %v, want ErrAssistantProviderError", err)
	}
}

func TestComplete_EmptyTextNotCached(t *testing.T) {
	store := memKVStore{}
	inner := &mockCompleter{}
	cc := New(inner, store, "mapdex:", "m", nil, nil)

	if _, err := cc.Complete(context.Background(), "sys", "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store) != 0 {
		t.Errorf("empty completion cached: %v", store)
	}
}

func TestComplete_RoundTripAndMetrics(t *testing.T) {
	store := memKVStore{}
	inner := &mockCompleter{result: domain.Completion{Text: "desc"}}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cache_total"}, []string{"result"})
	cc := New(inner, store, "p:", "m", total, nil)
	ctx := context.Background()

	for range 3 {
		if _, err := cc.Complete(ctx, "sys", "same prompt"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := cc.Complete(ctx, "sys", "other prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if hits := testutil.ToFloat64(total.WithLabelValues("hit")); hits != 2 {
		t.Errorf("hits = %v, want 2", hits)
	}
	if misses := testutil.ToFloat64(total.WithLabelValues("miss")); misses != 2 {
		t.Errorf("misses = %v, want 2", misses)
	}
}

func TestCacheKey_SeparatesSystemAndPrompt(t *testing.T) {
	cc := New(&mockCompleter{}, memKVStore{}, "p:", "m", nil, nil)
	if cc.cacheKey("ab", "c") == cc.cacheKey("a", "bc") {
		t.Error("keys collide across the system/prompt boundary")
	}
	other := New(&mockCompleter{}, memKVStore{}, "p:", "other", nil, nil)
	if cc.cacheKey("s", "p") == other.cacheKey("s", "p") {
		t.Error("keys collide across models")
	}
}

package filtercache

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/vgraster/internal/geom"
)

func key(id uint32) CacheKey {
	return CacheKey{NodeID: id, CTM: geom.Identity()}
}

func TestSetThenGetHit(t *testing.T) {
	c := NewCache(1000)
	c.Set(key(1), "image-1", geom.Point{}, 100)

	entry, ok := c.Get(key(1))
	if !ok {
		t.Fatal("expected hit")
	}
	if entry.Image != "image-1" {
		t.Errorf("got %v", entry.Image)
	}
}

func TestEvictionOrdering(t *testing.T) {
	c := NewCache(300)
	c.Set(key(1), "v1", geom.Point{}, 100)
	c.Set(key(2), "v2", geom.Point{}, 100)
	c.Set(key(3), "v3", geom.Point{}, 100)

	// touch k1 so it becomes most-recently-used
	if _, ok := c.Get(key(1)); !ok {
		t.Fatal("expected k1 present")
	}

	c.Set(key(4), "v4", geom.Point{}, 100)

	if _, ok := c.Get(key(2)); ok {
		t.Error("expected k2 to have been evicted")
	}
	if _, ok := c.Get(key(1)); !ok {
		t.Error("expected k1 to remain (recently used)")
	}
	if _, ok := c.Get(key(3)); !ok {
		t.Error("expected k3 to remain")
	}
	if _, ok := c.Get(key(4)); !ok {
		t.Error("expected k4 to remain (just inserted)")
	}
}

func TestOversizedInsertIsKeptAndExceedsBudget(t *testing.T) {
	c := NewCache(100)
	c.Set(key(1), "big", geom.Point{}, 500)

	if _, ok := c.Get(key(1)); !ok {
		t.Fatal("expected oversized entry to be kept")
	}
	if got := c.CurrentBytes(); got != 500 {
		t.Errorf("CurrentBytes() = %d, want 500", got)
	}

	c.Set(key(2), "other", geom.Point{}, 10)
	if _, ok := c.Get(key(1)); ok {
		t.Error("expected the oversized entry to be evicted by the next insert")
	}
}

func TestReplaceSemantics(t *testing.T) {
	c := NewCache(1000)
	c.Set(key(1), "v1", geom.Point{}, 50)
	c.Set(key(1), "v2", geom.Point{}, 30)

	entry, ok := c.Get(key(1))
	if !ok || entry.Image != "v2" {
		t.Fatalf("got entry=%+v ok=%v, want v2", entry, ok)
	}
	if got := c.CurrentBytes(); got != 30 {
		t.Errorf("CurrentBytes() = %d, want 30 (only v2's size)", got)
	}
}

func TestPurgeByKeysRemovesOnlyListed(t *testing.T) {
	c := NewCache(1000)
	c.Set(key(1), "v1", geom.Point{}, 10)
	c.Set(key(2), "v2", geom.Point{}, 10)

	c.PurgeByKeys([]CacheKey{key(1)})

	if _, ok := c.Get(key(1)); ok {
		t.Error("expected k1 purged")
	}
	if _, ok := c.Get(key(2)); !ok {
		t.Error("expected k2 to remain")
	}
}

func TestPurgeClearsEverything(t *testing.T) {
	c := NewCache(1000)
	c.Set(key(1), "v1", geom.Point{}, 10)
	c.Set(key(2), "v2", geom.Point{}, 10)
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if c.CurrentBytes() != 0 {
		t.Errorf("CurrentBytes() = %d, want 0", c.CurrentBytes())
	}
}

func TestDefaultCacheIsSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("expected Default() to return the same instance across calls")
	}
}

func TestDumpStatsReportsGroupedCounters(t *testing.T) {
	c := NewCache(1000)
	c.Set(key(1), "v1", geom.Point{}, 10)
	if _, ok := c.Get(key(1)); !ok {
		t.Fatal("expected hit")
	}
	if _, ok := c.Get(key(2)); ok {
		t.Fatal("expected miss")
	}

	got := c.DumpStats(message.NewPrinter(language.English))
	for _, want := range []string{"1 entries", "1 hits", "1 misses"} {
		if !strings.Contains(got, want) {
			t.Errorf("DumpStats() = %q, want it to contain %q", got, want)
		}
	}
}

func TestDumpStatsDefaultsToEnglishWhenPrinterIsNil(t *testing.T) {
	c := NewCache(1000)
	if c.DumpStats(nil) == "" {
		t.Error("expected non-empty output from DumpStats(nil)")
	}
}

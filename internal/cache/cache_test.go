package cache

import (
	"testing"
	"time"

	"github.com/framescope/framescope/internal/model"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if _, found := c.Get("missing"); found {
		t.Fatal("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found := c.Get("k")
	if !found {
		t.Fatal("expected hit after Set")
	}
	if string(got) != "payload" {
		t.Errorf("Get = %q, want %q", got, "payload")
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after Delete")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("stale"), -time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
	// The expired file is removed on read, so a second Get also misses.
	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to stay gone")
	}
}

func TestDiskCacheKeyCharacters(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := SnippetKey("ep-01", "some transcript text", []string{"migrant", "asylum"}, 50, 42)
	if err := c.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("Set with hashed key: %v", err)
	}
	if _, found := c.Get(key); !found {
		t.Error("expected hit for hashed key")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Hour, dir, time.Hour)

	// Seed the disk layer out of band, as a previous run would have.
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	if _, found := layered.Get("k"); !found {
		t.Fatal("expected layered Get to fall through to disk")
	}

	// After promotion the entry survives removal from disk.
	if err := disk.Delete("k"); err != nil {
		t.Fatalf("delete disk entry: %v", err)
	}
	if _, found := layered.Get("k"); !found {
		t.Error("expected promoted entry to hit from memory")
	}
}

func TestLayeredCacheSetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Hour, dir, time.Hour)

	if err := layered.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	disk := NewDiskCache(dir, time.Hour)
	if _, found := disk.Get("k"); !found {
		t.Error("expected Set to reach the disk layer")
	}
}

func TestSnippetKeyDependsOnAllInputs(t *testing.T) {
	base := SnippetKey("ep-01", "text", []string{"migrant"}, 50, 42)

	if again := SnippetKey("ep-01", "text", []string{"migrant"}, 50, 42); again != base {
		t.Error("same inputs should produce the same key")
	}

	variants := map[string]string{
		"episode": SnippetKey("ep-02", "text", []string{"migrant"}, 50, 42),
		"text":    SnippetKey("ep-01", "other", []string{"migrant"}, 50, 42),
		"stems":   SnippetKey("ep-01", "text", []string{"asylum"}, 50, 42),
		"radius":  SnippetKey("ep-01", "text", []string{"migrant"}, 3, 42),
		"seed":    SnippetKey("ep-01", "text", []string{"migrant"}, 50, 7),
	}
	for name, key := range variants {
		if key == base {
			t.Errorf("changing %s should change the key", name)
		}
	}
}

func TestSnippetRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)
	key := SnippetKey("ep-01", "text", []string{"migrant"}, 50, 42)

	want := &model.Snippet{
		EpisodeID:  "ep-01",
		Text:       "detained several migrants near the asylum",
		Window:     model.Window{Start: 1, End: 6},
		MatchCount: 2,
	}
	if err := SetSnippet(c, key, want, 0); err != nil {
		t.Fatalf("SetSnippet: %v", err)
	}

	got, found := GetSnippet(c, key)
	if !found {
		t.Fatal("expected snippet hit")
	}
	if got.Text != want.Text || got.Window != want.Window || got.MatchCount != want.MatchCount {
		t.Errorf("GetSnippet = %+v, want %+v", got, want)
	}
}

func TestGetSnippetDropsUndecodableEntries(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)
	if err := c.Set("bad", []byte("{not json"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, found := GetSnippet(c, "bad"); found {
		t.Fatal("expected undecodable entry to miss")
	}
	if _, found := c.Get("bad"); found {
		t.Error("expected undecodable entry to be evicted")
	}
}

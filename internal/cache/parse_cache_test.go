package cache

import (
	"fmt"
	"testing"

	"github.com/psarz/g2g-converter/internal/model"
)

func TestParseCacheHitAndMiss(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	key := Key([]byte("stages: [build]"))
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected miss on empty cache")
	}

	cfg := &model.PipelineConfig{Stages: []string{"build"}}
	c.Add(key, cfg)

	got, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit after add")
	}
	if got != cfg {
		t.Fatalf("cache returned different config")
	}
}

func TestParseCacheKeyStableAndDistinct(t *testing.T) {
	a := Key([]byte("content"))
	if a != Key([]byte("content")) {
		t.Fatalf("same content produced different keys")
	}
	if a == Key([]byte("other")) {
		t.Fatalf("different content produced same key")
	}
	if len(a) != 64 {
		t.Fatalf("key length = %d", len(a))
	}
}

func TestParseCacheEvictsOldest(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	for i := 0; i < 3; i++ {
		content := []byte(fmt.Sprintf("job%d: {script: echo}", i))
		c.Add(Key(content), &model.PipelineConfig{})
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if _, ok := c.Get(Key([]byte("job0: {script: echo}"))); ok {
		t.Fatalf("oldest entry not evicted")
	}
	if _, ok := c.Get(Key([]byte("job2: {script: echo}"))); !ok {
		t.Fatalf("newest entry missing")
	}
}

func TestParseCacheDefaultSize(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("new cache with default size: %v", err)
	}
	c.Add("k", &model.PipelineConfig{})
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
}

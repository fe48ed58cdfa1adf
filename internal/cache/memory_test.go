package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/claimify/internal/model"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	conf := 0.8
	c.Set("k", model.FactCheckResult{
		Verdict:    model.VerdictVerified,
		Confidence: &conf,
		Citations:  []model.Citation{{URL: "https://abs.gov.au"}},
	}, 0)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected cached result")
	}
	if got.Verdict != model.VerdictVerified || *got.Confidence != 0.8 {
		t.Errorf("Expected VERIFIED 0.8, got %s %v", got.Verdict, got.Confidence)
	}

	// mutating the copy must not leak into the cache
	*got.Confidence = 0.1
	got.Citations[0].URL = "changed"
	again, _ := c.Get("k")
	if *again.Confidence != 0.8 || again.Citations[0].URL != "https://abs.gov.au" {
		t.Errorf("Expected cached value unchanged, got %v %v", *again.Confidence, again.Citations)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("short", model.FactCheckResult{Verdict: model.VerdictRefuted}, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("a", model.FactCheckResult{}, 0)
	c.Set("b", model.FactCheckResult{}, 0)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a deleted")
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
}

func TestQueryKey(t *testing.T) {
	a := QueryKey("perplexity", "sonar-pro", "Australia be 8%")
	b := QueryKey("perplexity", "sonar-pro", "  australia   be 8% ")
	if a != b {
		t.Errorf("Expected whitespace and case to be ignored, got %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "claimify:v1:") {
		t.Errorf("Expected namespaced key, got %s", a)
	}
	if a == QueryKey("perplexity", "sonar", "australia be 8%") {
		t.Error("Expected model to change the key")
	}
}

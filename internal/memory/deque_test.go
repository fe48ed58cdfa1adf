package memory

import (
	"testing"

	"github.com/ppiankov/claimify/internal/model"
)

func ent(canonical string, salience float64) model.Entity {
	return model.Entity{Surface: canonical, Canonical: canonical, Salience: salience}
}

func TestEntityDeque_PushReplacesAndMovesToFront(t *testing.T) {
	d := NewEntityDeque(5)
	d.Push(ent("a", 0.5))
	d.Push(ent("b", 0.5))
	d.Push(ent("a", 0.9))

	items := d.Items()
	if len(items) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(items))
	}
	if items[0].Canonical != "a" || items[0].Salience != 0.9 {
		t.Errorf("Expected updated a at front, got %+v", items[0])
	}
	if items[1].Canonical != "b" {
		t.Errorf("Expected b second, got %s", items[1].Canonical)
	}
}

func TestEntityDeque_EvictsOldest(t *testing.T) {
	d := NewEntityDeque(3)
	for _, c := range []string{"a", "b", "c", "d"} {
		d.Push(ent(c, 0.5))
	}

	if d.Len() != 3 {
		t.Fatalf("Expected 3 entities, got %d", d.Len())
	}
	if _, ok := d.Get("a"); ok {
		t.Error("Expected oldest entity to be evicted")
	}
	if front, _ := d.Peek(); front.Canonical != "d" {
		t.Errorf("Expected d at front, got %s", front.Canonical)
	}
}

func TestEntityDeque_Pop(t *testing.T) {
	d := NewEntityDeque(0)
	if _, ok := d.Pop(); ok {
		t.Error("Expected Pop on empty deque to fail")
	}
	d.Push(ent("x", 0.5))
	e, ok := d.Pop()
	if !ok || e.Canonical != "x" {
		t.Errorf("Expected to pop x, got %+v", e)
	}
	if d.Len() != 0 {
		t.Errorf("Expected empty deque, got %d", d.Len())
	}
}

func TestEntityDeque_MostSalientPrefersRecentOnTie(t *testing.T) {
	d := NewEntityDeque(5)
	d.Push(ent("old", 0.7))
	d.Push(ent("low", 0.5))
	d.Push(ent("new", 0.7))

	best, ok := d.MostSalient()
	if !ok {
		t.Fatal("Expected an entity")
	}
	if best.Canonical != "new" {
		t.Errorf("Expected the more recent tie to win, got %s", best.Canonical)
	}
}

func TestEntityDeque_ItemsIsCopy(t *testing.T) {
	d := NewEntityDeque(5)
	d.Push(ent("a", 0.5))
	items := d.Items()
	items[0].Canonical = "mutated"

	if _, ok := d.Get("a"); !ok {
		t.Error("Expected deque to be unaffected by caller mutation")
	}
}

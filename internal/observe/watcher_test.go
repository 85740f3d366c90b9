package observe

import (
	"math"
	"testing"
	"time"

	"github.com/worktally/worktally/internal/progress"
)

func makeWatcher() *Watcher[string] {
	tree, err := progress.NewOrdered([]progress.Task[string]{
		{Key: "a", Desc: progress.Units{Child: 3, Parent: 2}},
		{Key: "b", Desc: progress.Units{Child: 1, Parent: 3}},
	})
	if err != nil {
		panic(err)
	}
	return NewWatcher(tree)
}

// recv pops one buffered update or fails the test. Publication is synchronous
// with the mutation, so no waiting is involved.
func recv(t *testing.T, sub *Subscription) Update {
	t.Helper()
	select {
	case u, ok := <-sub.Updates():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return u
	default:
		t.Fatal("expected a buffered update, got none")
	}
	return Update{}
}

func assertEmpty(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case u := <-sub.Updates():
		t.Fatalf("unexpected update: %+v", u)
	default:
	}
}

func TestRootFractionFiresOnEveryMutation(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchRoot(PropertyFraction)
	defer sub.Cancel()

	w.AddCompleted("a", 1)
	u := recv(t, sub)
	if u.Property != PropertyFraction {
		t.Fatalf("property = %s, want %s", u.Property, PropertyFraction)
	}
	if math.Abs(u.Fraction-2.0/15.0) > 1e-9 {
		t.Errorf("fraction = %v, want %v", u.Fraction, 2.0/15.0)
	}

	// Even a mutation that does not change the value recomputes and fires.
	w.SetCompleted("a", 1)
	u = recv(t, sub)
	if math.Abs(u.Fraction-2.0/15.0) > 1e-9 {
		t.Errorf("fraction = %v, want %v", u.Fraction, 2.0/15.0)
	}
}

func TestRootCompletedFiresOnlyOnThreshold(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchRoot(PropertyCompleted)
	defer sub.Cancel()

	// Partial progress: the integer count must stay silent.
	w.AddCompleted("a", 1)
	w.AddCompleted("a", 1)
	assertEmpty(t, sub)

	// Crossing fully-complete credits A's full weight.
	w.AddCompleted("a", 1)
	u := recv(t, sub)
	if u.Units != 2 {
		t.Errorf("root completed update = %d, want 2", u.Units)
	}

	// Regressing back below the threshold also fires.
	w.SetCompleted("a", 1)
	u = recv(t, sub)
	if u.Units != 0 {
		t.Errorf("root completed update after regression = %d, want 0", u.Units)
	}
}

func TestChildTotalFiresOnlyOnResize(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchTask("b", PropertyTotal)
	defer sub.Cancel()

	w.SetCompleted("b", 1)
	assertEmpty(t, sub)

	w.SetChildTotal("b", 4)
	u := recv(t, sub)
	if u.Units != 4 {
		t.Errorf("total update = %d, want 4", u.Units)
	}
}

func TestChildCompletedFiresOnChange(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchTask("a", PropertyCompleted)
	defer sub.Cancel()

	w.SetCompleted("a", 2)
	u := recv(t, sub)
	if u.Units != 2 {
		t.Errorf("completed update = %d, want 2", u.Units)
	}

	// Same value again: integer property stays quiet.
	w.SetCompleted("a", 2)
	assertEmpty(t, sub)
}

func TestLatestValueWins(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchRoot(PropertyFraction)
	defer sub.Cancel()

	// Three mutations before the subscriber reads: only the newest value
	// survives in the buffer.
	w.AddCompleted("a", 1)
	w.AddCompleted("a", 1)
	w.AddCompleted("a", 1)

	u := recv(t, sub)
	if math.Abs(u.Fraction-0.4) > 1e-9 {
		t.Errorf("conflated fraction = %v, want 0.4 (latest)", u.Fraction)
	}
	assertEmpty(t, sub)
}

func TestUnknownKeySubscription(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchTask("missing", PropertyFraction)

	u, ok := <-sub.Updates()
	if !ok {
		t.Fatal("expected one terminal update before close")
	}
	if !u.Absent {
		t.Errorf("update.Absent = false, want true")
	}

	if _, ok := <-sub.Updates(); ok {
		t.Error("stream should be closed after the terminal absent update")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchRoot(PropertyFraction)

	w.AddCompleted("a", 1)
	recv(t, sub)

	sub.Cancel()
	w.AddCompleted("a", 1)

	if _, ok := <-sub.Updates(); ok {
		t.Error("canceled subscription should deliver nothing and be closed")
	}

	// Cancel is idempotent and leaves the tree alone.
	sub.Cancel()
	if child, _ := w.Child("a"); child.Completed != 2 {
		t.Errorf("tree state = %d completed, want 2 (cancel must not touch it)", child.Completed)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	w := makeWatcher()
	first := w.WatchRoot(PropertyFraction)
	second := w.WatchRoot(PropertyFraction)
	defer first.Cancel()
	defer second.Cancel()

	w.SetCompleted("b", 1)

	for i, sub := range []*Subscription{first, second} {
		u := recv(t, sub)
		if math.Abs(u.Fraction-0.6) > 1e-9 {
			t.Errorf("subscriber %d fraction = %v, want 0.6", i, u.Fraction)
		}
	}
}

func TestResetAllPublishes(t *testing.T) {
	w := makeWatcher()
	w.SetCompleted("a", 3)
	w.SetCompleted("b", 1)

	rootFrac := w.WatchRoot(PropertyFraction)
	rootDone := w.WatchRoot(PropertyCompleted)
	childDone := w.WatchTask("a", PropertyCompleted)
	defer rootFrac.Cancel()
	defer rootDone.Cancel()
	defer childDone.Cancel()

	w.ResetAll()

	if u := recv(t, rootFrac); u.Fraction != 0.0 {
		t.Errorf("root fraction after reset = %v, want 0.0", u.Fraction)
	}
	if u := recv(t, rootDone); u.Units != 0 {
		t.Errorf("root completed after reset = %d, want 0", u.Units)
	}
	if u := recv(t, childDone); u.Units != 0 {
		t.Errorf("child completed after reset = %d, want 0", u.Units)
	}
}

func TestMetadataForwarding(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchRoot(PropertyMetadata)
	defer sub.Cancel()

	eta := 90 * time.Second
	w.SetMetadata(progress.MetaEstimatedTimeRemaining, eta)

	u := recv(t, sub)
	if u.Value != eta {
		t.Errorf("metadata value = %v, want %v (forwarded verbatim)", u.Value, eta)
	}

	got, ok := w.Tree().Metadata(progress.MetaEstimatedTimeRemaining)
	if !ok || got != eta {
		t.Errorf("stored metadata = %v, %v; want %v, true", got, ok, eta)
	}
}

func TestUnknownKeyMutationPublishesNothing(t *testing.T) {
	w := makeWatcher()
	sub := w.WatchRoot(PropertyFraction)
	defer sub.Cancel()

	w.SetCompleted("missing", 99)
	w.AddCompleted("missing", 1)
	w.SetChildTotal("missing", 10)

	assertEmpty(t, sub)
}

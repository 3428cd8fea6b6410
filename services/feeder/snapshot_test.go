package feeder

import (
	"context"
	"testing"

	"github.com/gear-feeds/oracle-feeder/internal/codec"
)

func TestReconcile_EmptyQueue(t *testing.T) {
	node := &fakeNode{}
	svc := newValueService(t, node, newFakeStream())

	svc.reconcile(context.Background())

	if jobs := drainJobs(svc); len(jobs) != 0 {
		t.Errorf("dispatched %d jobs for an empty queue, want 0", len(jobs))
	}
}

func TestReconcile_AllItemsDispatched(t *testing.T) {
	node := &fakeNode{queue: [][]string{
		{"3", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
		{"5", "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		{"8", "0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"},
	}}
	svc := newValueService(t, node, newFakeStream())

	svc.reconcile(context.Background())

	jobs := drainJobs(svc)
	if len(jobs) != 3 {
		t.Fatalf("dispatched %d jobs, want 3", len(jobs))
	}

	seen := map[uint64]bool{}
	for _, j := range jobs {
		if j.kind != "update_value" {
			t.Errorf("job kind = %s, want update_value", j.kind)
		}
		raw, err := j.action.Encode()
		if err != nil {
			t.Fatalf("encode job action: %v", err)
		}
		action, err := codec.DecodeUpdateValue(raw)
		if err != nil {
			t.Fatalf("decode job action: %v", err)
		}
		if action.Value >= 10_000_000_000_000 {
			t.Errorf("value %d is not below the bound", action.Value)
		}
		seen[action.ID] = true
	}
	for _, id := range []uint64{3, 5, 8} {
		if !seen[id] {
			t.Errorf("id %d was never dispatched", id)
		}
	}
}

func TestReconcile_BadIDIsFatalToBatch(t *testing.T) {
	node := &fakeNode{queue: [][]string{
		{"7", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
		{"not-a-number", "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
	}}
	svc := newValueService(t, node, newFakeStream())

	if _, err := svc.fetchRequestsQueue(context.Background()); err == nil {
		t.Fatal("fetchRequestsQueue() should fail when any id is not a valid integer")
	}

	// reconcile logs the failure and dispatches nothing, including the
	// valid entry before the bad one.
	svc.reconcile(context.Background())
	if jobs := drainJobs(svc); len(jobs) != 0 {
		t.Errorf("dispatched %d jobs from a failed reconciliation, want 0", len(jobs))
	}
}

func TestFetchRequestsQueue_PreservesOrder(t *testing.T) {
	node := &fakeNode{queue: [][]string{
		{"9", "0xaa"},
		{"2", "0xbb"},
		{"4", "0xcc"},
	}}
	svc := newValueService(t, node, newFakeStream())

	requests, err := svc.fetchRequestsQueue(context.Background())
	if err != nil {
		t.Fatalf("fetchRequestsQueue() error = %v", err)
	}

	want := []uint64{9, 2, 4}
	if len(requests) != len(want) {
		t.Fatalf("got %d requests, want %d", len(requests), len(want))
	}
	for i, id := range want {
		if requests[i].ID != id {
			t.Errorf("requests[%d].ID = %d, want %d", i, requests[i].ID, id)
		}
	}
}

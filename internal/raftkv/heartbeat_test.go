package raftkv

import "testing"

func TestHeartbeatRejectsStaleTerm(t *testing.T) {
	n := NewNode(2, testRoster(), newFakeClient(), nil)
	n.mu.Lock()
	n.term = 5
	n.mu.Unlock()

	resp := n.HandleHeartbeat(HeartbeatRequest{LeaderID: 1, Term: 3, ChangeLog: map[string]string{}})
	if resp.Status != HeartbeatBad {
		t.Fatalf("expected a heartbeat with a stale term to be rejected, got %v", resp.Status)
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.term != 5 {
		t.Fatalf("expected term to remain 5 after rejecting a stale heartbeat, got %d", n.term)
	}
}

func TestHeartbeatAcceptsEqualTermAndDemotes(t *testing.T) {
	n := NewNode(2, testRoster(), newFakeClient(), nil)
	n.mu.Lock()
	n.term = 5
	n.role = Leader
	n.mu.Unlock()

	resp := n.HandleHeartbeat(HeartbeatRequest{LeaderID: 3, Term: 5, ChangeLog: map[string]string{"a": "1"}})
	if resp.Status != HeartbeatOK {
		t.Fatalf("expected equal-term heartbeat to be accepted, got %v", resp.Status)
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.role != Follower {
		t.Fatal("expected an equal-term heartbeat to demote a self-proclaimed leader")
	}
	if n.leaderHint != 3 {
		t.Fatalf("expected leaderHint to be updated to 3, got %d", n.leaderHint)
	}
}

func TestHeartbeatReplacesWholeMap(t *testing.T) {
	n := NewNode(2, testRoster(), newFakeClient(), nil)
	n.store.Set("stale", "old")

	n.HandleHeartbeat(HeartbeatRequest{LeaderID: 1, Term: 1, ChangeLog: map[string]string{"fresh": "new"}})

	if n.store.Has("stale") {
		t.Fatal("expected heartbeat to wholly overwrite the map, not merge")
	}
	v, ok := n.store.Get("fresh")
	if !ok || v != "new" {
		t.Fatalf("expected fresh=new after heartbeat replace, got %q ok=%v", v, ok)
	}
}

func TestHeartbeatAdvancesTermFromGreaterLeader(t *testing.T) {
	n := NewNode(2, testRoster(), newFakeClient(), nil)
	n.mu.Lock()
	n.term = 1
	n.mu.Unlock()

	n.HandleHeartbeat(HeartbeatRequest{LeaderID: 1, Term: 9, ChangeLog: map[string]string{}})

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.term != 9 {
		t.Fatalf("expected term to advance to 9, got %d", n.term)
	}
}

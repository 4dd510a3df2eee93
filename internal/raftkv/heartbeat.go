package raftkv

import (
	"context"
	"time"

	"raftregister/internal/cluster"
)

// runHeartbeatLoop wakes once per heartbeat interval and, if this node is
// leader, broadcasts its term and full key/value snapshot to every peer.
// Broadcasts fan out concurrently (unlike the sequential vote round): one
// goroutine per peer, with no shared timeout budget across the fan-out.
func (n *Node) runHeartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(cluster.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.deadimitation()

			n.mu.RLock()
			isLeader := n.role == Leader
			term := n.term
			snapshot := n.store.Snapshot()
			n.mu.RUnlock()

			if isLeader {
				n.broadcastHeartbeat(ctx, term, snapshot)

				// Only a leader's own ticker refreshes its timestamp here;
				// a follower's last-heartbeat is only ever moved forward
				// by an incoming heartbeat or a granted vote, never by its
				// own ticker tick — otherwise it could never time out.
				n.mu.Lock()
				n.lastHeartbeat = time.Now()
				n.mu.Unlock()
			}
		}
	}
}

func (n *Node) broadcastHeartbeat(ctx context.Context, term uint64, snapshot map[string]string) {
	peers := n.roster.IDs()
	n.log.LogHeartbeatSent(term, len(peers)-1)

	for _, peerID := range peers {
		if peerID == n.id {
			continue
		}
		go func(peerID int) {
			addr, ok := n.roster.Addr(peerID)
			if !ok {
				return
			}
			rctx, cancel := context.WithTimeout(ctx, cluster.RPCTimeout)
			defer cancel()
			_, _ = n.client.SendHeartbeat(rctx, addr, HeartbeatRequest{
				LeaderID:  n.id,
				Term:      term,
				ChangeLog: snapshot,
			})
			// Failures are ignored silently: the next tick retries.
		}(peerID)
	}
}

// HandleHeartbeat answers an incoming heartbeat from a claimed leader.
func (n *Node) HandleHeartbeat(req HeartbeatRequest) HeartbeatResponse {
	n.deadimitation()

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.term > req.Term {
		n.log.LogHeartbeatRejected(req.LeaderID, req.Term, n.term)
		return HeartbeatResponse{Status: HeartbeatBad}
	}

	// A tied term still demotes and overwrites: vote uniqueness means only
	// one node can be leader in a term, so the sender is authoritative for
	// it even if we haven't heard that we lost.
	if n.role != Follower {
		n.log.LogStateChange(n.role, Follower, req.Term)
	}
	n.role = Follower
	n.term = req.Term
	n.lastHeartbeat = time.Now()
	n.leaderHint = req.LeaderID
	n.store.Replace(req.ChangeLog)

	n.log.LogHeartbeatAccepted(req.LeaderID, req.Term)
	return HeartbeatResponse{Status: HeartbeatOK}
}

package raftkv

import (
	"context"
	"time"

	"raftregister/internal/cluster"
)

// runElectionLoop is the long-running election ticker: it wakes once per
// second, and if too much time has elapsed since the last accepted
// heartbeat and this node isn't already leader, runs an election round.
// It runs on a plain ticker rather than a reset-per-iteration timer: the
// timeout check is a once-a-second poll rather than an event-driven one.
func (n *Node) runElectionLoop(ctx context.Context) {
	ticker := time.NewTicker(cluster.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.deadimitation()

			n.mu.RLock()
			elapsed := time.Since(n.lastHeartbeat)
			timeout := n.electionTimeout
			isLeader := n.role == Leader
			term := n.term
			role := n.role
			kv := n.store.Snapshot()
			n.mu.RUnlock()

			if elapsed > timeout && !isLeader {
				n.startElection(ctx)
			}

			n.log.LogTick(term, role, kv)
		}
	}
}

// startElection runs one election round: increment term, request votes
// from the whole roster (including self) sequentially, and become leader
// on a strict majority. There is no retry scheduled here — the next
// election-ticker timeout triggers the next round if this one fails.
func (n *Node) startElection(ctx context.Context) {
	n.mu.Lock()
	n.term++
	term := n.term
	n.mu.Unlock()

	n.log.LogElectionStart(term)

	votes := 0
	needed := n.roster.Majority()

	for _, peerID := range n.roster.IDs() {
		granted := n.requestVoteFrom(ctx, peerID, term)
		if granted {
			votes++
		}
	}

	n.mu.Lock()
	oldRole := n.role
	if votes >= needed && n.term == term {
		n.role = Leader
		n.leaderHint = n.id
	}
	won := n.role == Leader && n.term == term
	n.lastHeartbeat = time.Now()
	n.mu.Unlock()

	if won {
		if oldRole != Leader {
			n.log.LogStateChange(oldRole, Leader, term)
		}
		n.log.LogElectionWon(term, votes, needed)
	}
}

// requestVoteFrom asks a single peer (or itself) for a vote at term, with
// a bounded RPC timeout. Network failures count as "no vote", never a
// negative vote.
func (n *Node) requestVoteFrom(ctx context.Context, peerID int, term uint64) bool {
	if peerID == n.id {
		// Self-vote is always granted; short-circuited locally rather
		// than round-tripping through HTTP to ourselves. The tally is
		// identical either way.
		return true
	}

	addr, ok := n.roster.Addr(peerID)
	if !ok {
		return false
	}

	rctx, cancel := context.WithTimeout(ctx, cluster.RPCTimeout)
	defer cancel()

	resp, err := n.client.RequestVote(rctx, addr, VoteRequest{CandidateID: n.id, Term: term})
	if err != nil {
		return false
	}
	return resp.VoteGranted
}

// HandleVote answers an incoming vote request.
func (n *Node) HandleVote(req VoteRequest) VoteResponse {
	n.deadimitation()

	n.mu.Lock()

	if req.Term > n.term {
		n.term = req.Term
	}

	// Self-vote is granted unconditionally, regardless of role or prior
	// votes in this term. This node's own election rounds never reach this
	// branch (requestVoteFrom counts the self-vote locally); it answers a
	// vote request addressed to this node's own id over /vote.
	if req.CandidateID == n.id {
		n.mu.Unlock()
		n.log.LogVoteGranted(req.CandidateID, req.Term)
		return VoteResponse{VoteGranted: true}
	}

	if n.role != Follower {
		n.mu.Unlock()
		n.log.LogVoteDenied(req.CandidateID, req.Term, "not a follower")
		return VoteResponse{VoteGranted: false}
	}

	if _, voted := n.votesByTerm[req.Term]; voted {
		n.mu.Unlock()
		n.log.LogVoteDenied(req.CandidateID, req.Term, "already voted this term")
		return VoteResponse{VoteGranted: false}
	}

	n.votesByTerm[req.Term] = req.CandidateID
	n.lastHeartbeat = time.Now()
	n.mu.Unlock()

	n.log.LogVoteGranted(req.CandidateID, req.Term)
	return VoteResponse{VoteGranted: true}
}

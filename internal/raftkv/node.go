// Package raftkv implements the per-node state machine described in the
// design: per-term voting, leader discovery via heartbeat timeouts, and
// follower convergence through state-carrying heartbeats. This is the
// "hard part" the rest of the repository exists to serve.
package raftkv

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"raftregister/internal/cluster"
	"raftregister/internal/kvstore"
)

// Role is a node's place in the (simplified, two-state) protocol. There is
// no explicit Candidate state: a node attempting election stays logically a
// Follower until it observes a majority of votes, at which point it jumps
// straight to Leader.
type Role int

const (
	Follower Role = iota
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// Node holds all per-process state for one cluster member. Every field is
// guarded by mu; the two background tickers and the HTTP handler pool all
// read and mutate the same record, so a single coarse lock is the whole
// concurrency story, kept intentionally rather than re-architected into
// per-field locks.
type Node struct {
	mu sync.RWMutex

	id     int
	roster *cluster.Roster
	client PeerClient

	term          uint64
	role          Role
	leaderHint    int // 0 means unset; ids in the roster start at 1
	votesByTerm   map[uint64]int
	lastHeartbeat time.Time
	alive         bool

	electionTimeout time.Duration

	store *kvstore.Store

	aliveCond *sync.Cond

	log *Logger
}

// NewNode constructs a Node in its initial state: Follower, term 0, empty
// map, alive. Nothing is persisted, so this is also what a restart looks
// like.
func NewNode(id int, roster *cluster.Roster, client PeerClient, logger *logrus.Logger) *Node {
	n := &Node{
		id:              id,
		roster:          roster,
		client:          client,
		role:            Follower,
		votesByTerm:     make(map[uint64]int),
		lastHeartbeat:   time.Now(),
		alive:           true,
		electionTimeout: cluster.ElectionTimeout(id),
		store:           kvstore.New(),
		log:             newLogger(logger, id),
	}
	n.aliveCond = sync.NewCond(&n.mu)
	return n
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State    string `json:"state"`
	LeaderID int    `json:"leader_id"`
	Term     uint64 `json:"term"`
}

// Status reports the node's current view of the world.
func (n *Node) Status() StatusResponse {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return StatusResponse{
		State:    n.role.String(),
		LeaderID: n.leaderHint,
		Term:     n.term,
	}
}

// TurnOn revives a downed node: its tickers and inbound heartbeat/vote
// handlers resume on the next deadimitation check.
func (n *Node) TurnOn() {
	n.mu.Lock()
	n.alive = true
	term := n.term
	n.mu.Unlock()
	n.aliveCond.Broadcast()
	n.log.Info("turned on", "term", term)
}

// TurnOff simulates a crash: both tickers and the inbound heartbeat/vote
// handlers block until revived. Status, turnon/turnoff and the client data
// RPCs keep answering.
func (n *Node) TurnOff() {
	n.mu.Lock()
	n.alive = false
	n.mu.Unlock()
	n.log.Info("turned off")
}

// deadimitation blocks while the node is marked dead, waiting on the
// condition variable (woken by TurnOn's broadcast, with no timed poll)
// rather than returning immediately: a downed node ignores
// protocol work but still answers turnon/turnoff/status, modeled as a
// gated wait instead of killing the caller's goroutine so the HTTP
// listener never needs to stop.
func (n *Node) deadimitation() {
	n.mu.Lock()
	for !n.alive {
		n.aliveCond.Wait()
	}
	n.mu.Unlock()
}

// Start launches the election and heartbeat tickers as background
// goroutines. It returns immediately; both loops run until ctx is
// cancelled.
func (n *Node) Start(ctx context.Context) {
	go n.runElectionLoop(ctx)
	go n.runHeartbeatLoop(ctx)
}

// ID returns this node's server id.
func (n *Node) ID() int {
	return n.id
}

package raftkv

import (
	"context"
	"encoding/json"
)

// VoteRequest is the body of POST /vote.
type VoteRequest struct {
	CandidateID int    `json:"candidate_id"`
	Term        uint64 `json:"term"`
}

// VoteResponse is the body returned from POST /vote.
type VoteResponse struct {
	VoteGranted bool `json:"vote_granted"`
}

// HeartbeatRequest is the body of POST /heartbeat.
type HeartbeatRequest struct {
	LeaderID  int               `json:"leader_id"`
	Term      uint64            `json:"term"`
	ChangeLog map[string]string `json:"change_log"`
}

// HeartbeatStatus is the status string returned from POST /heartbeat.
type HeartbeatStatus string

const (
	HeartbeatOK  HeartbeatStatus = "ok"
	HeartbeatBad HeartbeatStatus = "bad"
)

// HeartbeatResponse is the body returned from POST /heartbeat.
type HeartbeatResponse struct {
	Status HeartbeatStatus `json:"status"`
}

// PeerClient is the outbound transport a Node uses to talk to the rest of
// the cluster: vote requests, heartbeat broadcasts, and forwarding a
// client write/read to the current leader. Implemented by
// internal/transport over plain HTTP/JSON; defined here so the RPC
// interfaces live alongside the state machine that calls them.
type PeerClient interface {
	RequestVote(ctx context.Context, addr string, req VoteRequest) (VoteResponse, error)
	SendHeartbeat(ctx context.Context, addr string, req HeartbeatRequest) (HeartbeatResponse, error)
	Forward(ctx context.Context, addr, method, path string, body interface{}) (json.RawMessage, error)
}

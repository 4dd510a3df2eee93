package raftkv

import (
	"context"
	"encoding/json"
)

// fakeClient is an in-memory stand-in for PeerClient: it never touches the
// network, and lets tests script per-peer vote/heartbeat responses.
type fakeClient struct {
	voteGranted    map[string]bool
	heartbeatErr   map[string]error
	forwardReplies map[string]json.RawMessage
	forwardCalls   []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		voteGranted:    make(map[string]bool),
		heartbeatErr:   make(map[string]error),
		forwardReplies: make(map[string]json.RawMessage),
	}
}

func (f *fakeClient) RequestVote(ctx context.Context, addr string, req VoteRequest) (VoteResponse, error) {
	return VoteResponse{VoteGranted: f.voteGranted[addr]}, nil
}

func (f *fakeClient) SendHeartbeat(ctx context.Context, addr string, req HeartbeatRequest) (HeartbeatResponse, error) {
	if err := f.heartbeatErr[addr]; err != nil {
		return HeartbeatResponse{}, err
	}
	return HeartbeatResponse{Status: HeartbeatOK}, nil
}

func (f *fakeClient) Forward(ctx context.Context, addr, method, path string, body interface{}) (json.RawMessage, error) {
	f.forwardCalls = append(f.forwardCalls, addr+" "+method+" "+path)
	return f.forwardReplies[addr], nil
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"raftregister/internal/cluster"
	"raftregister/internal/raftkv"
)

// HTTPClient implements raftkv.PeerClient over plain HTTP/JSON: a single
// shared *http.Client with a bounded per-call timeout, rather than dialing
// fresh per request.
type HTTPClient struct {
	http *http.Client
}

// NewHTTPClient builds a client whose outbound calls are individually
// bounded by the context deadline the caller supplies (the node always
// supplies cluster.RPCTimeout); the client's own Timeout is a slightly
// looser backstop.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		http: &http.Client{Timeout: cluster.RPCTimeout + 500*time.Millisecond},
	}
}

func (c *HTTPClient) postJSON(ctx context.Context, url string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// RequestVote sends POST /vote to addr.
func (c *HTTPClient) RequestVote(ctx context.Context, addr string, req raftkv.VoteRequest) (raftkv.VoteResponse, error) {
	body, err := c.postJSON(ctx, cluster.PeerURL(addr, "vote"), req)
	if err != nil {
		return raftkv.VoteResponse{}, err
	}
	var out raftkv.VoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return raftkv.VoteResponse{}, err
	}
	return out, nil
}

// SendHeartbeat sends POST /heartbeat to addr.
func (c *HTTPClient) SendHeartbeat(ctx context.Context, addr string, req raftkv.HeartbeatRequest) (raftkv.HeartbeatResponse, error) {
	body, err := c.postJSON(ctx, cluster.PeerURL(addr, "heartbeat"), req)
	if err != nil {
		return raftkv.HeartbeatResponse{}, err
	}
	var out raftkv.HeartbeatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return raftkv.HeartbeatResponse{}, err
	}
	return out, nil
}

// Forward re-issues a client data RPC (same HTTP method, same JSON body)
// against the leader's corresponding endpoint, and returns the leader's
// response body unparsed — the node wraps it straight into its own
// response, so a follower's forwarded reply is byte-identical to what the
// leader would have sent a direct caller.
func (c *HTTPClient) Forward(ctx context.Context, addr, method, path string, body interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	// net/http's transfer layer treats any response to a HEAD request as
	// bodiless (resp.Body reads as io.EOF regardless of what the server
	// wrote), so a forwarded HEAD would never see the leader's JSON body.
	// The node's /head_data route answers GET the same way it answers
	// HEAD, so forward over the wire as GET and let the body come back
	// normally.
	wireMethod := method
	if wireMethod == http.MethodHead {
		wireMethod = http.MethodGet
	}

	url := cluster.PeerURL(addr, path)
	req, err := http.NewRequestWithContext(ctx, wireMethod, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forwarding %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

package raftkv

import (
	"context"
	"encoding/json"

	"raftregister/internal/cluster"
	"raftregister/internal/kvstore"
)

// Response helpers shared by the six client data RPCs, all of
// which share one shape: decode, forward if not leader, execute locally
// if leader, always return 200-coded in-band JSON.

type okResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type getResponse struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Only ever called with the small response structs above, which
		// always marshal cleanly.
		panic(err)
	}
	return b
}

// forwardOrExecute is the shared shape behind every client data RPC:
// forward to the current leader if this node isn't it, otherwise run
// execute and marshal its result.
func (n *Node) forwardOrExecute(ctx context.Context, method, path string, body interface{}, execute func() interface{}) json.RawMessage {
	n.mu.RLock()
	isLeader := n.role == Leader
	leaderID := n.leaderHint
	n.mu.RUnlock()

	if isLeader {
		return mustJSON(execute())
	}

	addr, ok := n.roster.Addr(leaderID)
	if !ok {
		return mustJSON(errorResponse{Status: "error", Message: "no leader known"})
	}

	rctx, cancel := context.WithTimeout(ctx, cluster.RPCTimeout)
	defer cancel()

	raw, err := n.client.Forward(rctx, addr, method, path, body)
	if err != nil {
		return mustJSON(errorResponse{Status: "error", Message: err.Error()})
	}
	return raw
}

// Get implements GET /get_data.
func (n *Node) Get(ctx context.Context, key string) json.RawMessage {
	return n.forwardOrExecute(ctx, "GET", "get_data", map[string]string{"key": key}, func() interface{} {
		var value *string
		if v, ok := n.store.Get(key); ok {
			value = &v
		}
		return getResponse{Key: key, Value: value}
	})
}

// Put implements PUT /put_data. Put and post are semantically identical.
func (n *Node) Put(ctx context.Context, key, value string) json.RawMessage {
	return n.setData(ctx, "PUT", "put_data", key, value)
}

// Post implements POST /post_data.
func (n *Node) Post(ctx context.Context, key, value string) json.RawMessage {
	return n.setData(ctx, "POST", "post_data", key, value)
}

func (n *Node) setData(ctx context.Context, method, path, key, value string) json.RawMessage {
	return n.forwardOrExecute(ctx, method, path, map[string]string{"key": key, "value": value}, func() interface{} {
		n.store.Set(key, value)
		return okResponse{Status: "ok"}
	})
}

// Delete implements DELETE /delete_data.
func (n *Node) Delete(ctx context.Context, key string) json.RawMessage {
	return n.forwardOrExecute(ctx, "DELETE", "delete_data", map[string]string{"key": key}, func() interface{} {
		if err := n.store.Delete(key); err != nil {
			if err == kvstore.ErrKeyNotFound {
				return errorResponse{Status: "error", Message: "Key not found"}
			}
			return errorResponse{Status: "error", Message: err.Error()}
		}
		return okResponse{Status: "ok"}
	})
}

// Head implements HEAD /head_data. Forwarding returns the forwarded
// response body, not the forwarded response's headers, so a forwarded
// HEAD reply carries the same {"status":...} payload a direct caller
// would see from the leader.
func (n *Node) Head(ctx context.Context, key string) json.RawMessage {
	return n.forwardOrExecute(ctx, "HEAD", "head_data", map[string]string{"key": key}, func() interface{} {
		if n.store.Has(key) {
			return okResponse{Status: "exists"}
		}
		return okResponse{Status: "not found"}
	})
}

// Update implements PATCH /update_data.
func (n *Node) Update(ctx context.Context, key, value string) json.RawMessage {
	return n.forwardOrExecute(ctx, "PATCH", "update_data", map[string]string{"key": key, "value": value}, func() interface{} {
		if err := n.store.Update(key, value); err != nil {
			if err == kvstore.ErrKeyNotFound {
				return errorResponse{Status: "error", Message: "Key not found"}
			}
			return errorResponse{Status: "error", Message: err.Error()}
		}
		return okResponse{Status: "ok"}
	})
}

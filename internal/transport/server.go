// Package transport wires the node state machine to the outside world:
// an HTTP/JSON server for inbound RPCs and client requests, and an
// HTTP/JSON client for outbound peer RPCs and leader forwarding.
//
// Routing is built on gorilla/mux, with one resource per verb registered
// via mux.HandleFunc.
package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"raftregister/internal/raftkv"
)

// Server serves every externally visible endpoint: peer RPCs (heartbeat,
// vote), client data RPCs, status, and the turnon/turnoff
// liveness-injection endpoints.
type Server struct {
	node   *raftkv.Node
	router *mux.Router
	log    *logrus.Entry
}

// NewServer builds a Server and registers all routes.
func NewServer(node *raftkv.Node, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		node:   node,
		router: mux.NewRouter(),
		log:    logger.WithField("component", "transport"),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler to pass to http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)
	s.router.HandleFunc("/vote", s.handleVote).Methods(http.MethodPost)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/turnon", s.handleTurnOn).Methods(http.MethodGet)
	s.router.HandleFunc("/turnoff", s.handleTurnOff).Methods(http.MethodGet)

	s.router.HandleFunc("/get_data", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/put_data", s.handlePut).Methods(http.MethodPut)
	s.router.HandleFunc("/post_data", s.handlePost).Methods(http.MethodPost)
	s.router.HandleFunc("/delete_data", s.handleDelete).Methods(http.MethodDelete)
	// GET is accepted alongside HEAD so a forwarded head_data request can
	// recover its JSON body: net/http treats any response to a HEAD
	// request as bodiless at the transfer layer, so internal forwarding
	// and the CLI client both reissue head_data as GET over the wire
	// (see internal/transport/client.go's Forward and cmd/client's call).
	s.router.HandleFunc("/head_data", s.handleHead).Methods(http.MethodHead, http.MethodGet)
	s.router.HandleFunc("/update_data", s.handleUpdate).Methods(http.MethodPatch)
}

// writeJSON always replies 200 OK with a JSON body — every error in this
// protocol is in-band.
func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	switch v := body.(type) {
	case json.RawMessage:
		w.Write(v)
	default:
		json.NewEncoder(w).Encode(v)
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err.Error() != "EOF" {
		return err
	}
	return nil
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req raftkv.HeartbeatRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, raftkv.HeartbeatResponse{Status: raftkv.HeartbeatBad})
		return
	}
	writeJSON(w, s.node.HandleHeartbeat(req))
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req raftkv.VoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, raftkv.VoteResponse{VoteGranted: false})
		return
	}
	writeJSON(w, s.node.HandleVote(req))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.node.Status())
}

func (s *Server) handleTurnOn(w http.ResponseWriter, r *http.Request) {
	s.node.TurnOn()
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleTurnOff(w http.ResponseWriter, r *http.Request) {
	s.node.TurnOff()
	writeJSON(w, map[string]string{"status": "ok"})
}

type keyBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	decodeBody(r, &body)
	writeJSON(w, s.node.Get(r.Context(), body.Key))
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	decodeBody(r, &body)
	writeJSON(w, s.node.Put(r.Context(), body.Key, body.Value))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	decodeBody(r, &body)
	writeJSON(w, s.node.Post(r.Context(), body.Key, body.Value))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	decodeBody(r, &body)
	writeJSON(w, s.node.Delete(r.Context(), body.Key))
}

func (s *Server) handleHead(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	decodeBody(r, &body)
	writeJSON(w, s.node.Head(r.Context(), body.Key))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body keyBody
	decodeBody(r, &body)
	writeJSON(w, s.node.Update(r.Context(), body.Key, body.Value))
}

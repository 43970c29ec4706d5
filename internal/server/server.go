package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/kevinxiao27/lww-set/lww"
	"github.com/pkg/errors"
)

// Server hosts named string sets and lets peers exchange snapshots over HTTP
// or a websocket.
type Server struct {
	logger  log.Logger
	metrics *Metrics
	newSet  func() *lww.Set[string]

	mu   sync.Mutex
	sets map[string]*lww.Replica[string]

	clientsMu sync.Mutex
	clients   map[string][]*websocket.Conn
	upgrader  websocket.Upgrader
}

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	msgSnapshot = "snapshot"
	msgAdd      = "add"
	msgRemove   = "remove"
	msgError    = "error"
)

// writeTimeout bounds every websocket write so one stalled peer cannot hold
// up the others.
var writeTimeout = 5 * time.Second

type ElementRequest struct {
	Element string `json:"element"`
}

type ValuesResponse struct {
	Values []string `json:"values"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer builds a server that creates sets on first use with newSet.
func NewServer(logger log.Logger, m *Metrics, newSet func() *lww.Set[string]) *Server {
	return &Server{
		logger:  logger,
		metrics: m,
		newSet:  newSet,
		sets:    make(map[string]*lww.Replica[string]),
		clients: make(map[string][]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/sets/{id}", s.handleValues).Methods(http.MethodGet)
	r.HandleFunc("/sets/{id}/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/sets/{id}/add", s.handleAdd).Methods(http.MethodPost)
	r.HandleFunc("/sets/{id}/remove", s.handleRemove).Methods(http.MethodPost)
	r.HandleFunc("/sets/{id}/merge", s.handleMerge).Methods(http.MethodPost)
	return r
}

func (s *Server) getSet(id string) *lww.Replica[string] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, exists := s.sets[id]; exists {
		return set
	}
	set := lww.NewReplica(s.newSet())
	s.sets[id] = set
	return set
}

func (s *Server) add(id, element string) {
	s.getSet(id).Add(element)
	s.metrics.Adds.With("set", id).Add(1)
	level.Debug(s.logger).Log("msg", "add", "set", id, "element", element)
}

func (s *Server) remove(id, element string) {
	s.getSet(id).Remove(element)
	s.metrics.Removes.With("set", id).Add(1)
	level.Debug(s.logger).Log("msg", "remove", "set", id, "element", element)
}

// merge decodes a JSON snapshot and folds it into set id. Malformed payloads
// leave the set untouched.
func (s *Server) merge(id string, data []byte) error {
	snap, err := lww.DecodeSnapshot[string](data)
	if err == nil {
		err = s.getSet(id).Merge(snap)
	}
	if err != nil {
		s.metrics.MalformedMerges.With("set", id).Add(1)
		level.Warn(s.logger).Log("msg", "rejected snapshot", "set", id, "err", err)
		return err
	}

	s.metrics.Merges.With("set", id).Add(1)
	level.Debug(s.logger).Log(
		"msg", "merged snapshot",
		"set", id,
		"adds", len(snap.AddSet),
		"removes", len(snap.RemoveSet),
	)
	return nil
}

func (s *Server) snapshotJSON(id string) (json.RawMessage, error) {
	return lww.EncodeSnapshot(s.getSet(id).Snapshot())
}

func decodeElement(r io.Reader) (string, error) {
	var req ElementRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return "", errors.Wrap(err, "invalid element request")
	}
	return req.Element, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	writeJSON(w, http.StatusOK, ValuesResponse{Values: s.getSet(id).Values()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := s.snapshotJSON(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.add)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.remove)
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request, apply func(id, element string)) {
	id := mux.Vars(r)["id"]
	element, err := decodeElement(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	apply(id, element)
	s.broadcastSnapshot(id)
	writeJSON(w, http.StatusOK, ValuesResponse{Values: s.getSet(id).Values()})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	if err := s.merge(id, body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}
	s.broadcastSnapshot(id)
	writeJSON(w, http.StatusOK, ValuesResponse{Values: s.getSet(id).Values()})
}

// broadcastSnapshot pushes the current state of set id to every subscriber.
// Subscribers whose write fails or times out are closed and dropped.
func (s *Server) broadcastSnapshot(id string) {
	data, err := s.snapshotJSON(id)
	if err != nil {
		level.Error(s.logger).Log("msg", "failed to encode snapshot", "set", id, "err", err)
		return
	}
	msg := WSMessage{Type: msgSnapshot, Data: data}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	clients := s.clients[id]
	level.Debug(s.logger).Log("msg", "broadcast", "set", id, "clients", len(clients))
	alive := clients[:0]
	for _, conn := range clients {
		if err := write(conn, msg); err != nil {
			level.Warn(s.logger).Log("msg", "dropping subscriber", "set", id, "err", err)
			conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	s.clients[id] = alive
}

func write(conn *websocket.Conn, msg WSMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (s *Server) send(conn *websocket.Conn, msg WSMessage) error {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return write(conn, msg)
}

func (s *Server) sendError(conn *websocket.Conn, err error) {
	data, _ := json.Marshal(err.Error())
	s.send(conn, WSMessage{Type: msgError, Data: data})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("set")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{"missing set query parameter"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(s.logger).Log("msg", "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// Subscribe under the write lock so no broadcast lands between the initial
	// snapshot and registration.
	s.clientsMu.Lock()
	data, err := s.snapshotJSON(id)
	if err == nil {
		err = write(conn, WSMessage{Type: msgSnapshot, Data: data})
	}
	if err == nil {
		s.clients[id] = append(s.clients[id], conn)
	}
	total := len(s.clients[id])
	s.clientsMu.Unlock()
	if err != nil {
		return
	}
	level.Info(s.logger).Log("msg", "client connected", "set", id, "total", total)

	defer s.dropClient(id, conn)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case msgSnapshot:
			if err := s.merge(id, msg.Data); err != nil {
				s.sendError(conn, err)
				continue
			}
		case msgAdd, msgRemove:
			var req ElementRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				s.sendError(conn, errors.Wrap(err, "invalid element request"))
				continue
			}
			if msg.Type == msgAdd {
				s.add(id, req.Element)
			} else {
				s.remove(id, req.Element)
			}
		default:
			s.sendError(conn, errors.Errorf("unknown message type %q", msg.Type))
			continue
		}
		s.broadcastSnapshot(id)
	}
}

func (s *Server) dropClient(id string, conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for i, c := range s.clients[id] {
		if c == conn {
			s.clients[id] = append(s.clients[id][:i], s.clients[id][i+1:]...)
			break
		}
	}
	level.Info(s.logger).Log("msg", "client disconnected", "set", id, "remaining", len(s.clients[id]))
}

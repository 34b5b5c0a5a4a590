package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dreamware/volt/internal/cluster"
)

type handlers struct {
	cluster *cluster.Cluster
	log     *logrus.Entry
}

func newHandlers(c *cluster.Cluster, log *logrus.Entry) *handlers {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &handlers{cluster: c, log: log}
}

// health reports 200 once the cluster has at least one node, 503
// otherwise, per spec.md §6/§7 ("the health endpoint signals this
// condition").
func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	if h.cluster.Size() == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// keyFromPath strips the given route prefix (e.g. "/kv/") from the
// request path to recover the opaque key. The edge is responsible for
// URL-decoding it; the core never sees the encoded form (spec.md §6).
func keyFromPath(r *http.Request, prefix string) (string, bool) {
	key := strings.TrimPrefix(r.URL.Path, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

type kvSetRequest struct {
	Value      string `json:"value"`
	TTLSeconds *int   `json:"ttl_seconds,omitempty"`
}

type kvGetResponse struct {
	Value string `json:"value"`
}

type kvDelResponse struct {
	Deleted bool `json:"deleted"`
}

func ttlFromSeconds(seconds *int) time.Duration {
	if seconds == nil || *seconds <= 0 {
		return 0
	}
	return time.Duration(*seconds) * time.Second
}

// kv serves GET/POST/DELETE /kv/{key}, storing and returning values as
// opaque strings.
func (h *handlers) kv(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromPath(r, "/kv/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		value, hit := h.cluster.Get(key)
		if !hit {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, kvGetResponse{Value: string(value)})

	case http.MethodPost:
		var req kvSetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		ttl := ttlFromSeconds(req.TTLSeconds)
		if err := h.cluster.Set(r.Context(), key, []byte(req.Value), ttl); err != nil {
			h.log.WithError(err).Error("set failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		deleted, err := h.cluster.Del(r.Context(), key)
		if err != nil {
			h.log.WithError(err).Error("delete failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, kvDelResponse{Deleted: deleted})

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type jsonSetRequest struct {
	Value      json.RawMessage `json:"value"`
	TTLSeconds *int            `json:"ttl_seconds,omitempty"`
}

type jsonGetResponse struct {
	Value json.RawMessage `json:"value"`
}

// json serves GET/POST /json/{key}, storing arbitrary JSON values. The
// stored bytes are the raw JSON the caller posted; Volt never parses or
// interprets it beyond passing it through.
func (h *handlers) json(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromPath(r, "/json/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		value, hit := h.cluster.Get(key)
		if !hit {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, jsonGetResponse{Value: json.RawMessage(value)})

	case http.MethodPost:
		var req jsonSetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		ttl := ttlFromSeconds(req.TTLSeconds)
		if err := h.cluster.Set(r.Context(), key, []byte(req.Value), ttl); err != nil {
			h.log.WithError(err).Error("set failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreamware/volt/internal/cluster"
)

func newTestHandlers(t *testing.T) *handlers {
	c := cluster.New(cluster.Config{
		VirtualNodes:      50,
		ReplicationFactor: 2,
		NumBuckets:        4,
		TickInterval:      2 * time.Millisecond,
	}, nil)
	t.Cleanup(c.Close)
	c.AddNode("node1")
	c.AddNode("node2")
	return newHandlers(c, nil)
}

func TestHealthReportsOKWithNodes(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthReportsUnavailableWithNoNodes(t *testing.T) {
	c := cluster.New(cluster.Config{VirtualNodes: 50, ReplicationFactor: 2}, nil)
	t.Cleanup(c.Close)
	h := newHandlers(c, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestKVSetThenGet(t *testing.T) {
	h := newTestHandlers(t)

	setBody, _ := json.Marshal(kvSetRequest{Value: "bar"})
	setReq := httptest.NewRequest(http.MethodPost, "/kv/foo", bytes.NewReader(setBody))
	setRec := httptest.NewRecorder()
	h.kv(setRec, setReq)
	if setRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on set, got %d: %s", setRec.Code, setRec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/kv/foo", nil)
	getRec := httptest.NewRecorder()
	h.kv(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", getRec.Code)
	}

	var resp kvGetResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Value != "bar" {
		t.Errorf("expected 'bar', got %q", resp.Value)
	}
}

func TestKVGetMissReturns404(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/kv/missing", nil)
	rec := httptest.NewRecorder()
	h.kv(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestKVDelete(t *testing.T) {
	h := newTestHandlers(t)

	setBody, _ := json.Marshal(kvSetRequest{Value: "bar"})
	setReq := httptest.NewRequest(http.MethodPost, "/kv/foo", bytes.NewReader(setBody))
	h.kv(httptest.NewRecorder(), setReq)

	delReq := httptest.NewRequest(http.MethodDelete, "/kv/foo", nil)
	delRec := httptest.NewRecorder()
	h.kv(delRec, delReq)

	var resp kvDelResponse
	if err := json.Unmarshal(delRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Deleted {
		t.Errorf("expected deleted=true")
	}
}

func TestKVSetWithTTLReadableBeforeExpiry(t *testing.T) {
	h := newTestHandlers(t)

	ttl := 1
	setBody, _ := json.Marshal(kvSetRequest{Value: "bar", TTLSeconds: &ttl})
	setReq := httptest.NewRequest(http.MethodPost, "/kv/foo", bytes.NewReader(setBody))
	h.kv(httptest.NewRecorder(), setReq)

	getReq := httptest.NewRequest(http.MethodGet, "/kv/foo", nil)
	getRec := httptest.NewRecorder()
	h.kv(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected immediate hit, got %d", getRec.Code)
	}
}

func TestJSONSetThenGetPreservesStructure(t *testing.T) {
	h := newTestHandlers(t)

	payload := jsonSetRequest{Value: json.RawMessage(`{"name":"alice","age":30}`)}
	body, _ := json.Marshal(payload)
	setReq := httptest.NewRequest(http.MethodPost, "/json/user:1", bytes.NewReader(body))
	setRec := httptest.NewRecorder()
	h.json(setRec, setReq)
	if setRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", setRec.Code, setRec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/json/user:1", nil)
	getRec := httptest.NewRecorder()
	h.json(getRec, getReq)

	var resp jsonGetResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(resp.Value, &decoded); err != nil {
		t.Fatalf("failed to decode stored value: %v", err)
	}
	if decoded["name"] != "alice" {
		t.Errorf("expected name 'alice', got %v", decoded["name"])
	}
}

func TestKVMethodNotAllowed(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPut, "/kv/foo", nil)
	rec := httptest.NewRecorder()
	h.kv(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestKeyFromPathEmptyKeyNotFound(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/kv/", nil)
	rec := httptest.NewRecorder()
	h.kv(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty key, got %d", rec.Code)
	}
}

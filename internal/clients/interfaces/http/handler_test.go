package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	clients "billing-cloud/internal/clients/domain"
	"billing-cloud/internal/clients/infrastructure/memory"
)

func TestClientCreateAndGet(t *testing.T) {
	handler, err := NewHandler(memory.NewClientRepository(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	payload := []byte(`{"legal_name":"Acme SpA","tax_id":"76.123.456-7","email":"pagos@acme.cl"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created clients.Client
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode client: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/clients/"+created.ID, nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestClientCreateValidation(t *testing.T) {
	handler, err := NewHandler(memory.NewClientRepository(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", bytes.NewReader([]byte(`{"tax_id":"1-9"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestClientGetUnknown(t *testing.T) {
	handler, err := NewHandler(memory.NewClientRepository(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/cli-missing", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestClientList(t *testing.T) {
	handler, err := NewHandler(memory.NewClientRepository(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []clients.Client
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

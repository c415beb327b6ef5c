package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"billing-cloud/internal/audit"
	"billing-cloud/internal/auth"
	clients "billing-cloud/internal/clients/domain"
)

// Handler provides client registry HTTP endpoints.
type Handler struct {
	repo        clients.Repository
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(repo clients.Repository, auditLogger audit.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("client handler: nil repository")
	}
	return &Handler{repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP handles routes under /api/v1/clients.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/clients" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if strings.HasPrefix(path, "/api/v1/clients/") && r.Method == http.MethodGet {
		h.handleGet(w, r, strings.TrimPrefix(path, "/api/v1/clients/"))
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LegalName string `json:"legal_name"`
		TaxID     string `json:"tax_id"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	client := &clients.Client{
		ID:        newClientID(),
		LegalName: req.LegalName,
		TaxID:     req.TaxID,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := client.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.Create(r.Context(), client); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(client)
	h.logAudit(r, client.ID, "client.create", map[string]any{"legal_name": client.LegalName})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []clients.Client{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	client, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if client == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(client)
}

func (h *Handler) logAudit(r *http.Request, clientID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "client",
		ResourceID:   clientID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func newClientID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "cli-" + hex.EncodeToString(buf)
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"billing-cloud/internal/audit"
	"billing-cloud/internal/auth"
	billingapp "billing-cloud/internal/billing/application"
	billing "billing-cloud/internal/billing/domain"
	clients "billing-cloud/internal/clients/domain"
	"billing-cloud/internal/observability/metrics"
)

// DocumentHandler serves one document kind under its base path. The
// same handler backs /api/v1/invoices and /api/v1/quotes.
type DocumentHandler struct {
	kind        billing.Kind
	basePath    string
	documents   *billingapp.DocumentService
	sender      *billingapp.SendService
	renderer    billingapp.DocumentRenderer
	auditLogger audit.Logger
}

// NewDocumentHandler constructs a handler for a kind.
func NewDocumentHandler(kind billing.Kind, documents *billingapp.DocumentService, sender *billingapp.SendService, renderer billingapp.DocumentRenderer, auditLogger audit.Logger) (*DocumentHandler, error) {
	if !billing.ValidKind(kind) {
		return nil, billing.ErrUnknownKind
	}
	if documents == nil {
		return nil, errors.New("document handler: nil document service")
	}
	if renderer == nil {
		return nil, errors.New("document handler: nil renderer")
	}
	basePath := "/api/v1/invoices"
	if kind == billing.KindQuote {
		basePath = "/api/v1/quotes"
	}
	return &DocumentHandler{
		kind:        kind,
		basePath:    basePath,
		documents:   documents,
		sender:      sender,
		renderer:    renderer,
		auditLogger: auditLogger,
	}, nil
}

// ServeHTTP routes document requests under the base path.
func (h *DocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == h.basePath {
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
	if strings.HasPrefix(path, h.basePath+"/") {
		rest := strings.TrimPrefix(path, h.basePath+"/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *DocumentHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "status":
			if r.Method == http.MethodPost {
				h.handleChangeStatus(w, r, id)
				return
			}
		case "reference":
			if r.Method == http.MethodPost && h.kind == billing.KindInvoice {
				h.handleSetReference(w, r, id)
				return
			}
		case "send":
			if r.Method == http.MethodPost {
				h.handleSend(w, r, id)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExportPDF(w, r, id)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *DocumentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input billingapp.CreateDocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	doc, err := h.documents.Create(r.Context(), h.kind, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(doc)
	h.logAudit(r, doc.ID, string(h.kind)+".create", map[string]any{
		"number": doc.Number,
		"total":  doc.Totals.Total,
	})
}

func (h *DocumentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	status := billing.Status(r.URL.Query().Get("status"))
	var issuedFrom time.Time
	if raw := r.URL.Query().Get("issued_from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid issued_from", http.StatusBadRequest)
			return
		}
		issuedFrom = parsed
	}
	list, err := h.documents.List(r.Context(), h.kind, status, issuedFrom)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []billing.Document{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *DocumentHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documents.Get(r.Context(), h.kind, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) handleChangeStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	doc, err := h.documents.ChangeStatus(r.Context(), h.kind, id, billing.Status(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     doc.ID,
		"status": doc.Status,
	})
	h.logAudit(r, doc.ID, string(h.kind)+".status", map[string]any{"status": req.Status})
}

func (h *DocumentHandler) handleSetReference(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		ExternalRef string `json:"external_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	doc, err := h.documents.SetExternalRef(r.Context(), id, req.ExternalRef)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":           doc.ID,
		"external_ref": doc.ExternalRef,
	})
	h.logAudit(r, doc.ID, "invoice.reference", map[string]any{"external_ref": req.ExternalRef})
}

func (h *DocumentHandler) handleSend(w http.ResponseWriter, r *http.Request, id string) {
	if h.sender == nil {
		http.Error(w, "sending disabled", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Recipient string `json:"recipient"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := h.sender.Send(r.Context(), h.kind, id, req.Recipient); err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     id,
		"status": billing.StatusSent,
	})
	h.logAudit(r, id, string(h.kind)+".send", map[string]any{"recipient": req.Recipient})
}

func (h *DocumentHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveDocumentExport(string(h.kind), result, time.Since(start))
	}()

	doc, err := h.documents.Get(r.Context(), h.kind, id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := h.renderer.Render(doc)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(h.kind)+"-"+doc.Number+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, doc.ID, string(h.kind)+".export", map[string]any{"format": "pdf"})
}

func (h *DocumentHandler) logAudit(r *http.Request, documentID, action string, meta map[string]any) {
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
		ResourceType: "document",
		ResourceID:   documentID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

var validationErrors = []error{
	billing.ErrEmptyNumber,
	billing.ErrInvalidIssueDate,
	billing.ErrNonPositiveQuantity,
	billing.ErrNegativeUnitPrice,
	billing.ErrEmptyDescription,
	billing.ErrMissingParty,
	billing.ErrAmbiguousParty,
	billing.ErrProspectNotAllowed,
	billing.ErrUnknownKind,
	billing.ErrUnknownStatus,
	billing.ErrExternalRefNotAllowed,
	billingapp.ErrEmptyRecipient,
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, billing.ErrDocumentNotFound) || errors.Is(err, clients.ErrClientNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

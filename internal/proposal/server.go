package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/novalend/governance-storage/pkg/httpsrv"
)

type Server struct {
	service *Service
}

func NewServer(s *Service) *Server {
	return &Server{
		service: s,
	}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/proposals", s.create).Methods(http.MethodPost)
	r.HandleFunc("/proposals", s.list).Methods(http.MethodGet)
	r.HandleFunc("/proposals/{id}", s.getByID).Methods(http.MethodGet)
	r.HandleFunc("/proposals/{id}/execute", s.execute).Methods(http.MethodPost)
	r.HandleFunc("/proposals/{id}/documents", s.attachDocument).Methods(http.MethodPost)
	r.HandleFunc("/proposals/{id}/documents", s.listDocuments).Methods(http.MethodGet)
	r.HandleFunc("/proposals/{id}/summary", s.summary).Methods(http.MethodGet)
}

type createForm struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Proposer    string    `json:"proposer"`
	Quorum      int64     `json:"quorum"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IpfsHash    *string   `json:"ipfs_hash,omitempty"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var form createForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	p, err := s.service.Create(r.Context(), CreateRequest{
		Title:       form.Title,
		Description: form.Description,
		Category:    Category(form.Category),
		Proposer:    form.Proposer,
		Quorum:      form.Quorum,
		StartDate:   form.StartDate,
		EndDate:     form.EndDate,
		IpfsHash:    form.IpfsHash,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusCreated, p)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	filters := []Filter{
		OrderByCreatedFilter{Desc: true},
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filters = append(filters, StatusFilter{Status: Status(status)})
	}

	if category := r.URL.Query().Get("category"); category != "" {
		filters = append(filters, CategoryFilter{Category: Category(category)})
	}

	if proposer := r.URL.Query().Get("proposer"); proposer != "" {
		filters = append(filters, ProposerFilter{Proposer: proposer})
	}

	limit, offset := pagination(r, 50)
	filters = append(filters, PageFilter{Limit: limit, Offset: offset})

	list, err := s.service.GetByFilters(filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, map[string]any{
		"proposals":   list.Proposals,
		"total_count": list.TotalCount,
	})
}

func (s *Server) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	p, err := s.service.GetByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, p)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	p, err := s.service.Execute(r.Context(), id, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, p)
}

type documentForm struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	FileType   string `json:"file_type"`
	SizeBytes  *int64 `json:"size_bytes,omitempty"`
	UploadedBy string `json:"uploaded_by"`
}

func (s *Server) attachDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	var form documentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	doc, err := s.service.AttachDocument(AttachDocumentRequest{
		ProposalID: id,
		Name:       form.Name,
		URL:        form.URL,
		FileType:   form.FileType,
		SizeBytes:  form.SizeBytes,
		UploadedBy: form.UploadedBy,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusCreated, doc)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	docs, err := s.service.GetDocuments(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "missing address")
		return
	}

	// detached from the request context: provider calls should not be aborted
	// halfway once the summary row is being written
	summary, err := s.service.GetAISummary(context.WithoutCancel(r.Context()), address, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func proposalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid proposal id")
		return uuid.UUID{}, false
	}

	return id, true
}

func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val >= 0 {
			offset = val
		}
	}

	return limit, offset
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpsrv.RespondError(w, http.StatusNotFound, "not_found", "proposal not found")
	case errors.Is(err, ErrInvalidInput):
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrInsufficientPower):
		httpsrv.RespondError(w, http.StatusForbidden, "insufficient_power", "not enough staked tokens")
	case errors.Is(err, ErrInvalidTransition):
		httpsrv.RespondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, ErrLimitExceeded):
		httpsrv.RespondError(w, http.StatusTooManyRequests, "limit_exceeded", "monthly summary limit reached")
	default:
		log.Error().Err(err).Msg("proposal request failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

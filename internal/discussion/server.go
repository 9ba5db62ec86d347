package discussion

import (
	"encoding/json"
	"errors"
	"net/http"

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
	r.HandleFunc("/proposals/{id}/discussions", s.create).Methods(http.MethodPost)
	r.HandleFunc("/proposals/{id}/discussions", s.list).Methods(http.MethodGet)
}

type createForm struct {
	UserAddress string  `json:"user_address"`
	UserName    *string `json:"user_name,omitempty"`
	Message     string  `json:"message"`
	ParentID    *string `json:"parent_id,omitempty"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid proposal id")
		return
	}

	var form createForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	if form.UserAddress == "" {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "missing user address")
		return
	}

	var parentID *uuid.UUID
	if form.ParentID != nil {
		parsed, err := uuid.Parse(*form.ParentID)
		if err != nil {
			httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid parent id")
			return
		}
		parentID = &parsed
	}

	d, err := s.service.Create(r.Context(), CreateRequest{
		ProposalID:  id,
		UserAddress: form.UserAddress,
		UserName:    form.UserName,
		Message:     form.Message,
		ParentID:    parentID,
	})

	switch {
	case errors.Is(err, ErrEmptyMessage):
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "empty message")
	case errors.Is(err, ErrProposalNotFound):
		httpsrv.RespondError(w, http.StatusNotFound, "not_found", "proposal not found")
	case errors.Is(err, ErrParentNotFound):
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "parent comment not found")
	case err != nil:
		log.Error().Err(err).Str("proposal", id.String()).Msg("create discussion failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
	default:
		httpsrv.RespondJSON(w, http.StatusCreated, d)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid proposal id")
		return
	}

	list, err := s.service.GetByProposal(id)
	if err != nil {
		log.Error().Err(err).Str("proposal", id.String()).Msg("list discussions failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, map[string]any{"discussions": list})
}

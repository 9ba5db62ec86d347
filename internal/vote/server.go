package vote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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
	r.HandleFunc("/proposals/{id}/votes", s.cast).Methods(http.MethodPost)
	r.HandleFunc("/proposals/{id}/votes", s.list).Methods(http.MethodGet)
}

type castForm struct {
	UserAddress     string  `json:"user_address"`
	Support         bool    `json:"support"`
	Reason          *string `json:"reason,omitempty"`
	TransactionHash *string `json:"transaction_hash,omitempty"`
}

func (s *Server) cast(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid proposal id")
		return
	}

	var form castForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	if form.UserAddress == "" {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "missing user address")
		return
	}

	v, err := s.service.Cast(r.Context(), CastRequest{
		ProposalID:      id,
		Voter:           form.UserAddress,
		Support:         form.Support,
		Reason:          form.Reason,
		TransactionHash: form.TransactionHash,
	})

	switch {
	case errors.Is(err, ErrProposalNotFound):
		httpsrv.RespondError(w, http.StatusNotFound, "not_found", "proposal not found")
	case errors.Is(err, ErrProposalNotActive):
		httpsrv.RespondError(w, http.StatusConflict, "invalid_state", "proposal is not accepting votes")
	case errors.Is(err, ErrNoVotingPower):
		httpsrv.RespondError(w, http.StatusForbidden, "no_voting_power", "stake tokens to vote")
	case errors.Is(err, ErrDuplicateVote):
		httpsrv.RespondError(w, http.StatusConflict, "duplicate_vote", "already voted on this proposal")
	case err != nil:
		log.Error().Err(err).Str("proposal", id.String()).Msg("cast vote failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
	default:
		httpsrv.RespondJSON(w, http.StatusCreated, v)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid proposal id")
		return
	}

	limit, offset := 50, 0
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

	list, err := s.service.GetByProposal(id, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("proposal", id.String()).Msg("list votes failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, map[string]any{
		"votes":       list.Votes,
		"total_count": list.TotalCount,
	})
}

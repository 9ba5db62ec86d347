package notification

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
	r.HandleFunc("/notifications", s.list).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", s.markRead).Methods(http.MethodPost)
	r.HandleFunc("/notifications/read-all", s.markAllRead).Methods(http.MethodPost)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "missing address")
		return
	}

	inbox, err := s.service.GetByAddress(address)
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("list notifications failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	httpsrv.RespondJSON(w, http.StatusOK, map[string]any{
		"notifications": inbox.Notifications,
		"unread_count":  inbox.UnreadCount,
	})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid notification id")
		return
	}

	err = s.service.MarkRead(id)
	switch {
	case errors.Is(err, ErrNotFound):
		httpsrv.RespondError(w, http.StatusNotFound, "not_found", "notification not found")
	case err != nil:
		log.Error().Err(err).Str("notification", id.String()).Msg("mark read failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
	default:
		httpsrv.RespondJSON(w, http.StatusNoContent, nil)
	}
}

type markAllForm struct {
	UserAddress string `json:"user_address"`
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	var form markAllForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	if form.UserAddress == "" {
		httpsrv.RespondError(w, http.StatusBadRequest, "invalid_request", "missing user address")
		return
	}

	if err := s.service.MarkAllRead(form.UserAddress); err != nil {
		log.Error().Err(err).Str("address", form.UserAddress).Msg("mark all read failed")
		httpsrv.RespondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	httpsrv.RespondJSON(w, http.StatusNoContent, nil)
}

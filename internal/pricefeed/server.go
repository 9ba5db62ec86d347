package pricefeed

import (
	"net/http"

	"github.com/gorilla/mux"

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
	r.HandleFunc("/markets/prices", s.list).Methods(http.MethodGet)
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	httpsrv.RespondJSON(w, http.StatusOK, map[string]any{
		"prices": s.service.Prices(),
	})
}

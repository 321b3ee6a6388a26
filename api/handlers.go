package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"raffler/models"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type enterRequest struct {
	ParticipantID string `json:"participant_id"`
	Amount        int64  `json:"amount"`
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type raffleResponse struct {
	Phase            models.RafflePhase    `json:"phase"`
	RoundNumber      int64                 `json:"round_number"`
	EntranceFee      int64                 `json:"entrance_fee"`
	IntervalSeconds  float64               `json:"interval_seconds"`
	LastResetAt      time.Time             `json:"last_reset_at"`
	EntrantCount     int                   `json:"entrant_count"`
	PendingRequestID *string               `json:"pending_request_id,omitempty"`
	LastWinnerID     *string               `json:"last_winner_id,omitempty"`
	LastPayout       *int64                `json:"last_payout,omitempty"`
	OracleSpec       models.RandomnessSpec `json:"oracle_spec"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) handleGetRaffle(w http.ResponseWriter, r *http.Request) {
	state, err := s.raffle.GetState(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	count, err := s.raffle.EntrantCount(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, raffleResponse{
		Phase:            state.Phase,
		RoundNumber:      state.RoundNumber,
		EntranceFee:      s.raffle.EntranceFee(),
		IntervalSeconds:  s.raffle.RoundInterval().Seconds(),
		LastResetAt:      state.LastResetAt,
		EntrantCount:     count,
		PendingRequestID: state.PendingRequestID,
		LastWinnerID:     state.LastWinnerID,
		LastPayout:       state.LastPayout,
		OracleSpec:       s.raffle.OracleSpec(),
	})
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	report, err := s.raffle.CheckEligibility(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	var req enterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	entrant, err := s.raffle.Enter(r.Context(), req.ParticipantID, req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, entrant)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	// The request body is opaque and ignored
	requestID, err := s.raffle.PerformDraw(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"request_id": requestID})
}

func (s *Server) handleGetEntrant(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "index must be an integer"})
		return
	}

	entrant, err := s.raffle.GetEntrant(r.Context(), index)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, entrant)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.ledger.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	account, err := s.ledger.Deposit(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, account)
}

// respondError maps domain errors onto HTTP statuses
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var notEligible *models.TriggerNotEligibleError
	if errors.As(err, &notEligible) {
		respondJSON(w, http.StatusConflict, errorResponse{
			Error:   models.ErrTriggerNotEligible.Error(),
			Details: notEligible.Report,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrInsufficientPayment),
		errors.Is(err, models.ErrInsufficientFunds):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotOpen):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrIndexOutOfRange),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrUnknownRequest):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

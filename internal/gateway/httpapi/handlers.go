package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/host"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createPollRequest struct {
	PollID             string           `json:"poll_id"`
	NumberOfOptions    uint32           `json:"number_of_options"`
	PollStartTimestamp domain.Timestamp `json:"poll_start_timestamp"`
	PollEndTimestamp   domain.Timestamp `json:"poll_end_timestamp"`
}

type createPollResponse struct {
	PollID string `json:"poll_id"`
}

type pollResponse struct {
	PollID             string           `json:"poll_id"`
	NumberOfOptions    uint32           `json:"number_of_options"`
	PollStartTimestamp domain.Timestamp `json:"poll_start_timestamp"`
	PollEndTimestamp   domain.Timestamp `json:"poll_end_timestamp"`
}

type voteRequest struct {
	VotingOption  uint32         `json:"voting_option"`
	NumberOfVotes domain.Balance `json:"number_of_votes"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := strings.TrimSpace(r.Header.Get(AccountHeader))
		if account == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: AccountHeader + " header is required"})
			return
		}
		ctx := host.WithCaller(r.Context(), domain.AccountID(account))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.PollID == "" {
		req.PollID = uuid.NewString()
	}

	ctx := r.Context()
	if account := strings.TrimSpace(r.Header.Get(AccountHeader)); account != "" {
		ctx = host.WithCaller(ctx, domain.AccountID(account))
	}

	if err := s.gov.CreatePoll(ctx, req.PollID, req.NumberOfOptions, req.PollStartTimestamp, req.PollEndTimestamp); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createPollResponse{PollID: req.PollID})
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")
	poll, err := s.gov.GetPollInfo(r.Context(), pollID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pollResponse{
		PollID:             pollID,
		NumberOfOptions:    poll.NumberOfOptions,
		PollStartTimestamp: poll.PollStartTimestamp,
		PollEndTimestamp:   poll.PollEndTimestamp,
	})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.gov.Vote(r.Context(), chi.URLParam(r, "pollID"), req.VotingOption, req.NumberOfVotes); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if err := s.gov.Withdraw(r.Context(), chi.URLParam(r, "pollID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := usecase.Kind(err)
	if kind == "" {
		s.logger.Error("governance request failed", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, statusOf(kind), errorResponse{Error: err.Error(), Kind: kind})
}

func statusOf(kind string) int {
	switch kind {
	case "PollDoesNotExist":
		return http.StatusNotFound
	case "PollIdAlreadyExists", "VoteDenied", "FundsAlreadyWithdrawn",
		"PollIsNotStarted", "PollIsFinished", "PollIsNotFinished":
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

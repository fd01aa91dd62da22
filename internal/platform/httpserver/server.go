package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	ballotbox "scrutin/contexts/polling-operations/ballot-box"
	balloterrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	ballothttp "scrutin/contexts/polling-operations/ballot-box/transport/http"
	stationlifecycle "scrutin/contexts/polling-operations/station-lifecycle"
	lifecycleerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	lifecyclehttp "scrutin/contexts/polling-operations/station-lifecycle/transport/http"
	disputeresolver "scrutin/contexts/tabulation/dispute-resolver"
	disputeerrors "scrutin/contexts/tabulation/dispute-resolver/domain/errors"
	disputehttp "scrutin/contexts/tabulation/dispute-resolver/transport/http"
	resultaggregator "scrutin/contexts/tabulation/result-aggregator"
	aggregatorerrors "scrutin/contexts/tabulation/result-aggregator/domain/errors"
	aggregatorhttp "scrutin/contexts/tabulation/result-aggregator/transport/http"
	tallyledger "scrutin/contexts/tabulation/tally-ledger"
	ledgererrors "scrutin/contexts/tabulation/tally-ledger/domain/errors"
	ledgerhttp "scrutin/contexts/tabulation/tally-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "scrutin/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	lifecycle  stationlifecycle.Module
	ballots    ballotbox.Module
	ledger     tallyledger.Module
	aggregates resultaggregator.Module
	disputes   disputeresolver.Module
}

func New(
	lifecycle stationlifecycle.Module,
	ballots ballotbox.Module,
	ledger tallyledger.Module,
	aggregates resultaggregator.Module,
	disputes disputeresolver.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		lifecycle:  lifecycle,
		ballots:    ballots,
		ledger:     ledger,
		aggregates: aggregates,
		disputes:   disputes,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/elections", s.handleScheduleElection)
	s.mux.HandleFunc("GET /api/v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("POST /api/v1/elections/{election_id}/start", s.handleStartElection)
	s.mux.HandleFunc("POST /api/v1/elections/{election_id}/finish", s.handleFinishElection)
	s.mux.HandleFunc("POST /api/v1/elections/{election_id}/cancel", s.handleCancelElection)
	s.mux.HandleFunc("GET /api/v1/elections/{election_id}/stations", s.handleElectionStations)
	s.mux.HandleFunc("POST /api/v1/stations", s.handleRegisterStation)
	s.mux.HandleFunc("POST /api/v1/stations/{station_id}/open", s.handleOpenStation)
	s.mux.HandleFunc("POST /api/v1/stations/{station_id}/close", s.handleCloseStation)
	s.mux.HandleFunc("GET /api/v1/stations/{station_id}/status", s.handleStationStatus)

	s.mux.HandleFunc("POST /api/v1/cast", s.handleCastBallot)
	s.mux.HandleFunc("POST /api/v1/elections/{election_id}/cast", s.handleCastBallot)
	s.mux.HandleFunc("GET /api/v1/eligibility", s.handleEligibility)
	s.mux.HandleFunc("POST /api/v1/rolls", s.handleRegisterRoll)
	s.mux.HandleFunc("POST /api/v1/rolls/{roll_id}/voters", s.handleAddVoter)
	s.mux.HandleFunc("GET /api/v1/rolls/{roll_id}/voters", s.handleRollEntries)
	s.mux.HandleFunc("GET /api/v1/stations/{station_id}/journal", s.handleStationJournal)

	s.mux.HandleFunc("GET /api/v1/tallies/{tally_id}", s.handleGetTally)
	s.mux.HandleFunc("GET /api/v1/tallies/{tally_id}/statistics", s.handleTallyStatistics)
	s.mux.HandleFunc("POST /api/v1/tallies/{tally_id}/counts", s.handleSetFinalCounts)
	s.mux.HandleFunc("POST /api/v1/tallies/{tally_id}/increment", s.handleIncrementCandidate)
	s.mux.HandleFunc("POST /api/v1/tallies/{tally_id}/validate", s.handleValidateTally)

	s.mux.HandleFunc("GET /api/v1/results/aggregate", s.handleAggregate)
	s.mux.HandleFunc("GET /api/v1/results/progress", s.handleProgress)

	s.mux.HandleFunc("POST /api/v1/disputes", s.handleSubmitDispute)
	s.mux.HandleFunc("GET /api/v1/disputes", s.handleDisputeHistory)
	s.mux.HandleFunc("GET /api/v1/disputes/{dispute_id}", s.handleGetDispute)
	s.mux.HandleFunc("POST /api/v1/disputes/{dispute_id}/resolve", s.handleResolveDispute)
	s.mux.HandleFunc("GET /api/v1/tallies/{tally_id}/disputes", s.handleTallyDisputes)
}

func (s *Server) handleScheduleElection(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.ScheduleElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.ScheduleElectionHandler(r.Context(), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.ElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.StartElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinishElection(w http.ResponseWriter, r *http.Request) {
	if err := s.lifecycle.Handler.FinishElectionHandler(r.Context(), r.PathValue("election_id")); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}

func (s *Server) handleCancelElection(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CancelElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.lifecycle.Handler.CancelElectionHandler(r.Context(), r.PathValue("election_id"), req); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleElectionStations(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.ElectionStationsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterStation(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.RegisterStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.RegisterStationHandler(r.Context(), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleOpenStation(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.OpenStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.lifecycle.Handler.OpenStationHandler(r.Context(), r.PathValue("station_id"), req); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "open"})
}

func (s *Server) handleCloseStation(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CloseStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CloseStationHandler(r.Context(), r.PathValue("station_id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStationStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.StationStatusHandler(r.Context(), r.PathValue("station_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.CastBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	electionID := r.PathValue("election_id")
	if electionID == "" {
		electionID = req.ElectionID
	}
	resp, err := s.ballots.Handler.CastBallotHandler(r.Context(), electionID, resolveClientIP(r), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query() // gorm-postgres-enforcer: allow-raw-sql parses HTTP query parameters only
	resp, err := s.ballots.Handler.EligibilityHandler(
		r.Context(),
		query.Get("voter_number"),
		query.Get("station_id"),
	)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterRoll(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.RegisterRollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.RegisterRollHandler(r.Context(), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddVoter(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.AddVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.AddVoterHandler(r.Context(), r.PathValue("roll_id"), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRollEntries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.RollEntriesHandler(r.Context(), r.PathValue("roll_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStationJournal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.StationJournalHandler(r.Context(), r.PathValue("station_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.TallyHandler(r.Context(), r.PathValue("tally_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTallyStatistics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.StationStatisticsHandler(r.Context(), r.PathValue("tally_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetFinalCounts(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.SetFinalCountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.SetFinalCountsHandler(r.Context(), r.PathValue("tally_id"), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleIncrementCandidate(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.IncrementCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.IncrementCandidateHandler(r.Context(), r.PathValue("tally_id"), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "incremented"})
}

func (s *Server) handleValidateTally(w http.ResponseWriter, r *http.Request) {
	validatorID := r.Header.Get("X-User-Id")
	if validatorID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	validatorRole := r.Header.Get("X-User-Role")

	var req ledgerhttp.ValidateTallyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	err := s.ledger.Handler.ValidateTallyHandler(
		r.Context(),
		r.PathValue("tally_id"),
		validatorID,
		validatorRole,
		req,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "validated"})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query() // gorm-postgres-enforcer: allow-raw-sql parses HTTP query parameters only
	resp, err := s.aggregates.Handler.AggregateHandler(
		r.Context(),
		query.Get("election_id"),
		query.Get("level"),
	)
	if err != nil {
		writeAggregatorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query() // gorm-postgres-enforcer: allow-raw-sql parses HTTP query parameters only
	resp, err := s.aggregates.Handler.ProgressHandler(r.Context(), query.Get("election_id"))
	if err != nil {
		writeAggregatorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitDispute(w http.ResponseWriter, r *http.Request) {
	var req disputehttp.SubmitDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDisputeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.disputes.Handler.SubmitDisputeHandler(r.Context(), req)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDisputeHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query() // gorm-postgres-enforcer: allow-raw-sql parses HTTP query parameters only
	resp, err := s.disputes.Handler.DisputeHistoryHandler(
		r.Context(),
		query.Get("status"),
		query.Get("from"),
		query.Get("to"),
	)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDispute(w http.ResponseWriter, r *http.Request) {
	resp, err := s.disputes.Handler.DisputeHandler(r.Context(), r.PathValue("dispute_id"))
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req disputehttp.ResolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDisputeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.disputes.Handler.ResolveDisputeHandler(r.Context(), r.PathValue("dispute_id"), req)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTallyDisputes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.disputes.Handler.TallyDisputesHandler(r.Context(), r.PathValue("tally_id"))
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLifecycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrInvalidElectionInput),
		errors.Is(err, lifecycleerrors.ErrInvalidStationInput):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidCounts),
		errors.Is(err, lifecycleerrors.ErrVotersExceedRoll):
		writeLifecycleError(w, http.StatusUnprocessableEntity, "invalid_counts", err.Error())
	case errors.Is(err, lifecycleerrors.ErrElectionNotFound),
		errors.Is(err, lifecycleerrors.ErrStationNotFound):
		writeLifecycleError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrElectionNotPlanned),
		errors.Is(err, lifecycleerrors.ErrElectionNotRunning),
		errors.Is(err, lifecycleerrors.ErrElectionTerminal),
		errors.Is(err, lifecycleerrors.ErrStationAlreadyOpen),
		errors.Is(err, lifecycleerrors.ErrStationNotOpen),
		errors.Is(err, lifecycleerrors.ErrNoOpenTally),
		errors.Is(err, lifecycleerrors.ErrConflict):
		writeLifecycleError(w, http.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, lifecycleerrors.ErrMinutesRender):
		writeLifecycleError(w, http.StatusBadGateway, "minutes_render_failed", err.Error())
	default:
		writeLifecycleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, balloterrors.ErrInvalidCastInput),
		errors.Is(err, balloterrors.ErrInvalidRollInput):
		writeBallotError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, balloterrors.ErrVoterNotFound),
		errors.Is(err, balloterrors.ErrRollNotFound),
		errors.Is(err, balloterrors.ErrStationNotFound),
		errors.Is(err, balloterrors.ErrElectionNotFound):
		writeBallotError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, balloterrors.ErrWrongStation):
		writeBallotError(w, http.StatusForbidden, "wrong_station", err.Error())
	case errors.Is(err, balloterrors.ErrAlreadyVoted):
		writeBallotError(w, http.StatusForbidden, "already_voted", err.Error())
	case errors.Is(err, balloterrors.ErrElectionNotRunning),
		errors.Is(err, balloterrors.ErrStationNotOpen):
		writeBallotError(w, http.StatusForbidden, "state_conflict", err.Error())
	case errors.Is(err, balloterrors.ErrNoOpenTally):
		writeBallotError(w, http.StatusNotFound, "no_open_tally", err.Error())
	case errors.Is(err, balloterrors.ErrCandidateNotOnBallot):
		writeBallotError(w, http.StatusUnprocessableEntity, "candidate_not_on_ballot", err.Error())
	case errors.Is(err, balloterrors.ErrRollExists),
		errors.Is(err, balloterrors.ErrVoterEnrolled),
		errors.Is(err, balloterrors.ErrVoterLocked),
		errors.Is(err, balloterrors.ErrConflict):
		writeBallotError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidTallyInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidCounts),
		errors.Is(err, ledgererrors.ErrSumExceedsValid):
		writeLedgerError(w, http.StatusUnprocessableEntity, "invalid_counts", err.Error())
	case errors.Is(err, ledgererrors.ErrTallyNotFound),
		errors.Is(err, ledgererrors.ErrCandidateNotFound),
		errors.Is(err, ledgererrors.ErrStationNotFound):
		writeLedgerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrNotAuthorized):
		writeLedgerError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, ledgererrors.ErrTallyValidated),
		errors.Is(err, ledgererrors.ErrAlreadyValidated),
		errors.Is(err, ledgererrors.ErrPreviouslyInvalidated),
		errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "state_conflict", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAggregatorDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, aggregatorerrors.ErrInvalidAggregateInput),
		errors.Is(err, aggregatorerrors.ErrUnknownLevel):
		writeAggregatorError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, aggregatorerrors.ErrElectionNotFound):
		writeAggregatorError(w, http.StatusNotFound, "election_not_found", err.Error())
	default:
		writeAggregatorError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDisputeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, disputeerrors.ErrInvalidDisputeInput),
		errors.Is(err, disputeerrors.ErrInvalidDecision):
		writeDisputeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, disputeerrors.ErrDisputeNotFound),
		errors.Is(err, disputeerrors.ErrTallyNotFound):
		writeDisputeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, disputeerrors.ErrDuplicateDispute),
		errors.Is(err, disputeerrors.ErrAlreadyResolved),
		errors.Is(err, disputeerrors.ErrConflict):
		writeDisputeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeDisputeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAggregatorError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, aggregatorhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeDisputeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, disputehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

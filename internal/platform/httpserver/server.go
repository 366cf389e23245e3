package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	assetledger "agora/contexts/finance/asset-ledger"
	asseterrors "agora/contexts/finance/asset-ledger/domain/errors"
	assethttp "agora/contexts/finance/asset-ledger/transport/http"
	daoengine "agora/contexts/governance/dao-engine"
	governanceerrors "agora/contexts/governance/dao-engine/domain/errors"
	governancehttp "agora/contexts/governance/dao-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// callerHeader identifies the acting address on every authenticated route.
const callerHeader = "X-Caller-Address"

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	governance daoengine.Module
	assets     assetledger.Module
}

func New(
	governance daoengine.Module,
	assets assetledger.Module,
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
		governance: governance,
		assets:     assets,
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

// Handler exposes the mux for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/governance/v1/members", s.handleAddMember)
	s.mux.HandleFunc("GET /api/governance/v1/members", s.handleListMembers)
	s.mux.HandleFunc("GET /api/governance/v1/members/{address}", s.handleMembershipCheck)
	s.mux.HandleFunc("POST /api/governance/v1/shares/buy", s.handleBuyShares)
	s.mux.HandleFunc("POST /api/governance/v1/shares/add", s.handleAddShares)
	s.mux.HandleFunc("POST /api/governance/v1/shares/give", s.handleGiveShares)
	s.mux.HandleFunc("GET /api/governance/v1/shares/{address}", s.handleShares)
	s.mux.HandleFunc("POST /api/governance/v1/proposals", s.handleAddProposal)
	s.mux.HandleFunc("GET /api/governance/v1/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /api/governance/v1/proposals/{proposal_id}/votes", s.handleVote)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}/votes", s.handleListBallots)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}/result", s.handleResult)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}/approval", s.handleApproval)
	s.mux.HandleFunc("GET /api/governance/v1/info", s.handleEngineInfo)

	s.mux.HandleFunc("POST /api/assets/v1/mint", s.handleAssetMint)
	s.mux.HandleFunc("POST /api/assets/v1/transfer", s.handleAssetTransfer)
	s.mux.HandleFunc("POST /api/assets/v1/approve", s.handleAssetApprove)
	s.mux.HandleFunc("GET /api/assets/v1/balances/{address}", s.handleAssetBalance)
	s.mux.HandleFunc("GET /api/assets/v1/allowances/{owner}/{spender}", s.handleAssetAllowance)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req governancehttp.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.AddMemberHandler(r.Context(), caller, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListMembersHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMembershipCheck(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	resp, err := s.governance.Handler.MembershipCheckHandler(r.Context(), address)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyShares(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req governancehttp.BuySharesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.BuySharesHandler(r.Context(), caller, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddShares(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req governancehttp.AddSharesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.AddSharesHandler(r.Context(), caller, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGiveShares(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req governancehttp.GiveSharesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.GiveSharesHandler(r.Context(), caller, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShares(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	resp, err := s.governance.Handler.SharesHandler(r.Context(), address)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req governancehttp.AddProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.AddProposalHandler(r.Context(), caller, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListProposalsHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	var req governancehttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.VoteHandler(r.Context(), caller, proposalID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBallots(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ListBallotsHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ResultHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ApprovalHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEngineInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.EngineInfoHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetMint(w http.ResponseWriter, r *http.Request) {
	var req assethttp.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.assets.Handler.MintHandler(r.Context(), req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetTransfer(w http.ResponseWriter, r *http.Request) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeAssetError(w, http.StatusUnauthorized, "missing_caller", callerHeader+" header is required")
		return
	}

	var req assethttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.assets.Handler.TransferHandler(r.Context(), caller, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetApprove(w http.ResponseWriter, r *http.Request) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeAssetError(w, http.StatusUnauthorized, "missing_caller", callerHeader+" header is required")
		return
	}

	var req assethttp.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.assets.Handler.ApproveHandler(r.Context(), caller, req)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetBalance(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	resp, err := s.assets.Handler.BalanceHandler(r.Context(), address)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetAllowance(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	spender := r.PathValue("spender")
	resp, err := s.assets.Handler.AllowanceHandler(r.Context(), owner, spender)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_caller", callerHeader+" header is required")
		return "", false
	}
	return caller, true
}

func parseProposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an unsigned integer")
		return 0, false
	}
	return proposalID, true
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrUnauthorized):
		writeGovernanceError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, governanceerrors.ErrNoShares):
		writeGovernanceError(w, http.StatusForbidden, "no_shares", err.Error())
	case errors.Is(err, governanceerrors.ErrProposalNotFound):
		writeGovernanceError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrDuplicateProposal):
		writeGovernanceError(w, http.StatusConflict, "duplicate_proposal", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyVoted):
		writeGovernanceError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidAmount):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidInput):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, asseterrors.ErrInsufficientFunds),
		errors.Is(err, asseterrors.ErrInsufficientAllowance):
		writeGovernanceError(w, http.StatusConflict, "payment_rejected", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAssetDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, asseterrors.ErrInvalidInput):
		writeAssetError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, asseterrors.ErrInsufficientFunds):
		writeAssetError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, asseterrors.ErrInsufficientAllowance):
		writeAssetError(w, http.StatusConflict, "insufficient_allowance", err.Error())
	default:
		writeAssetError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAssetError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, assethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

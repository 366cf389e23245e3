package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	assetledger "agora/contexts/finance/asset-ledger"
	daoengine "agora/contexts/governance/dao-engine"
	governancehttp "agora/contexts/governance/dao-engine/transport/http"
)

const testAdmin = "admin-1"

type testBridge struct {
	assets assetledger.Module
}

func (b testBridge) TransferFrom(ctx context.Context, from string, to string, amount uint64) error {
	return b.assets.Service.TransferFrom(ctx, "agora-treasury", from, to, amount)
}

func newTestServer() *Server {
	assets := assetledger.NewInMemoryModule(nil)
	governance := daoengine.NewInMemoryModule(testAdmin, testBridge{assets: assets}, nil)
	return New(governance, assets, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, caller string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller-Address", caller)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func TestAddMemberRequiresCallerHeader(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/api/governance/v1/members", "", `{"address":"member-1"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAddMemberForbiddenForNonAdmin(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/api/governance/v1/members", "stranger-1", `{"address":"member-1"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGovernanceFlowOverHTTP(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/api/governance/v1/members", testAdmin, `{"address":"member-1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add member: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, "/api/governance/v1/shares/give", testAdmin, `{"address":"member-1","amount":100}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("give shares: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals", "member-1", `{"proposal_id":1,"description":"upgrade the node pool"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add proposal: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals/1/votes", "member-1", `{"support":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("vote: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/governance/v1/proposals/1/result", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("result: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var result governancehttp.ResultResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.TotalVoters != 1 || result.YesWeight != 100 {
		t.Fatalf("unexpected result %+v", result)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/governance/v1/proposals/1/approval", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("approval: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var approval governancehttp.ApprovalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &approval); err != nil {
		t.Fatalf("decode approval: %v", err)
	}
	if !approval.Approved {
		t.Fatalf("expected approved proposal, got %+v", approval)
	}
}

func TestVoteWithoutSharesMapsToForbidden(t *testing.T) {
	server := newTestServer()
	doJSON(t, server, http.MethodPost, "/api/governance/v1/members", testAdmin, `{"address":"member-1"}`)
	doJSON(t, server, http.MethodPost, "/api/governance/v1/shares/give", testAdmin, `{"address":"member-1","amount":10}`)
	doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals", "member-1", `{"proposal_id":1,"description":"anything"}`)

	rr := doJSON(t, server, http.MethodPost, "/api/governance/v1/members", testAdmin, `{"address":"member-2"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add member-2: expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals/1/votes", "member-2", `{"support":true}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for shareless voter, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDoubleVoteMapsToConflict(t *testing.T) {
	server := newTestServer()
	doJSON(t, server, http.MethodPost, "/api/governance/v1/members", testAdmin, `{"address":"member-1"}`)
	doJSON(t, server, http.MethodPost, "/api/governance/v1/shares/give", testAdmin, `{"address":"member-1","amount":10}`)
	doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals", "member-1", `{"proposal_id":1,"description":"anything"}`)
	doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals/1/votes", "member-1", `{"support":true}`)

	rr := doJSON(t, server, http.MethodPost, "/api/governance/v1/proposals/1/votes", "member-1", `{"support":false}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double vote, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownProposalMapsToNotFound(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/api/governance/v1/proposals/42/result", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/api/governance/v1/proposals/not-a-number/result", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAssetEndpointsRoundTrip(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/api/assets/v1/mint", "", `{"address":"buyer-1","amount":1000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("mint: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, "/api/assets/v1/approve", "buyer-1", `{"spender":"agora-treasury","amount":500}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodGet, "/api/assets/v1/balances/buyer-1", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodGet, "/api/assets/v1/allowances/buyer-1/agora-treasury", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("allowance: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/assets/v1/transfer", "buyer-1", `{"to":"seller-1","amount":5000}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("overdraft transfer: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

package unit

import (
	"context"
	"testing"

	assetledger "agora/contexts/finance/asset-ledger"
	daoengine "agora/contexts/governance/dao-engine"
	"agora/contexts/governance/dao-engine/application/workers"
	governancehttp "agora/contexts/governance/dao-engine/transport/http"
	"agora/contexts/governance/dao-engine/ports"
)

type capturingPublisher struct {
	published []ports.EventEnvelope
	topics    []string
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.published = append(p.published, event)
	p.topics = append(p.topics, topic)
	return nil
}

func TestOutboxRelayPublishesGovernanceEvents(t *testing.T) {
	assets := assetledger.NewInMemoryModule(nil)
	governance := daoengine.NewInMemoryModule(adminAddress, treasuryBridge{assets: assets}, nil)

	addMember(t, governance, "member-1")
	giveShares(t, governance, "member-1", 40)
	if _, err := governance.Handler.AddProposalHandler(context.Background(), "member-1", governancehttp.AddProposalRequest{
		ProposalID:  1,
		Description: "publish the roadmap",
	}); err != nil {
		t.Fatalf("add proposal failed: %v", err)
	}
	if _, err := governance.Handler.VoteHandler(context.Background(), "member-1", 1, governancehttp.VoteRequest{Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    governance.Store,
		Publisher: publisher,
		Clock:     governance.Store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.published) != 4 {
		t.Fatalf("expected 4 events (member, shares, proposal, vote), got %d", len(publisher.published))
	}
	types := map[string]int{}
	for _, event := range publisher.published {
		types[event.EventType]++
	}
	for _, expected := range []string{"member.added", "shares.granted", "proposal.created", "vote.cast"} {
		if types[expected] != 1 {
			t.Fatalf("expected one %s event, got %d", expected, types[expected])
		}
	}

	pending, err := governance.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("published rows must leave the pending set, got %d", len(pending))
	}

	// A second cycle finds nothing to publish.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.published) != 4 {
		t.Fatalf("replayed cycle must not republish, got %d", len(publisher.published))
	}
}

package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance/dao-engine/domain/entities"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
	"agora/contexts/governance/dao-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// supplyRowID is the single row holding the total share supply.
const supplyRowID = 1

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveMember(ctx context.Context, member entities.Member) error {
	row := memberModelFromEntity(member)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		// Balance and supply are owned by CreditShares; a flag update must
		// not clobber them.
		DoUpdates: clause.Assignments(map[string]any{
			"is_member":  row.IsMember,
			"is_admin":   row.IsAdmin,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_save_member_failed", create.Error,
			"address", strings.TrimSpace(member.Address),
		)
	}
	return nil
}

func (r *Repository) GetMember(ctx context.Context, address string) (entities.Member, bool, error) {
	var row memberModel
	err := r.db.WithContext(ctx).
		Where("address = ?", strings.TrimSpace(address)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, false, nil
		}
		return entities.Member{}, false, r.logError("governance_repo_get_member_failed", err,
			"address", strings.TrimSpace(address),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListMembers(ctx context.Context) ([]entities.Member, error) {
	var rows []memberModel
	err := r.db.WithContext(ctx).
		Order("address ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_members_failed", err)
	}
	items := make([]entities.Member, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreditShares(
	ctx context.Context,
	address string,
	amount uint64,
	at time.Time,
) (entities.Member, error) {
	address = strings.TrimSpace(address)
	var credited entities.Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := memberModel{
			Address:      address,
			ShareBalance: amount,
			JoinedAt:     at.UTC(),
			UpdatedAt:    at.UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]any{
				"share_balance": gorm.Expr("members.share_balance + ?", amount),
				"updated_at":    at.UTC(),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		supply := supplyModel{ID: supplyRowID, TotalShares: amount}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_shares": gorm.Expr("governance_supply.total_shares + ?", amount),
			}),
		}).Create(&supply).Error; err != nil {
			return err
		}

		var updated memberModel
		if err := tx.Where("address = ?", address).First(&updated).Error; err != nil {
			return err
		}
		credited = updated.toEntity()
		return nil
	})
	if err != nil {
		return entities.Member{}, r.logError("governance_repo_credit_shares_failed", err,
			"address", address,
			"amount", amount,
		)
	}
	return credited, nil
}

func (r *Repository) TotalShares(ctx context.Context) (uint64, error) {
	var row supplyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", supplyRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("governance_repo_total_shares_failed", err)
	}
	return row.TotalShares, nil
}

func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrDuplicateProposal
		}
		return r.logError("governance_repo_create_proposal_failed", create.Error,
			"proposal_id", proposal.ProposalID,
		)
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("governance_repo_get_proposal_failed", err,
			"proposal_id", proposalID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	var rows []proposalModel
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_proposals_failed", err)
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetBallot(
	ctx context.Context,
	proposalID uint64,
	voter string,
) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Where("voter = ?", strings.TrimSpace(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("governance_repo_get_ballot_failed", err,
			"proposal_id", proposalID,
			"voter", strings.TrimSpace(voter),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListBallots(ctx context.Context, proposalID uint64) ([]entities.Ballot, error) {
	var rows []ballotModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("cast_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_ballots_failed", err,
			"proposal_id", proposalID,
		)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) RecordBallot(ctx context.Context, ballot entities.Ballot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := ballotModelFromEntity(ballot)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}
		// Relative increments in the ballot's transaction; two concurrent
		// voters both land their full weight.
		assignments := map[string]any{
			"updated_at": row.CastAt,
		}
		if ballot.Support {
			assignments["yes_weight"] = gorm.Expr("proposals.yes_weight + ?", ballot.Weight)
			assignments["yes_voters"] = gorm.Expr("proposals.yes_voters + 1")
		} else {
			assignments["no_weight"] = gorm.Expr("proposals.no_weight + ?", ballot.Weight)
			assignments["no_voters"] = gorm.Expr("proposals.no_voters + 1")
		}
		update := tx.Model(&proposalModel{}).
			Where("id = ?", ballot.ProposalID).
			Updates(assignments)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrProposalNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) || errors.Is(err, domainerrors.ErrProposalNotFound) {
			return err
		}
		return r.logError("governance_repo_record_ballot_failed", err,
			"proposal_id", ballot.ProposalID,
			"voter", strings.TrimSpace(ballot.Voter),
		)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := outboxModel{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    createdAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_append_outbox_failed", create.Error,
			"outbox_id", outboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &at,
		})
	if update.Error != nil {
		return r.logError("governance_repo_mark_outbox_published_failed", update.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/dao-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator satisfies ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.MemberRepository = (*Repository)(nil)
var _ ports.ProposalRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)

package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/finance/asset-ledger/domain/entities"
	domainerrors "agora/contexts/finance/asset-ledger/domain/errors"
	"agora/contexts/finance/asset-ledger/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *Repository) BalanceOf(ctx context.Context, address string) (uint64, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("address = ?", strings.TrimSpace(address)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("asset_repo_balance_of_failed", err,
			"address", strings.TrimSpace(address),
		)
	}
	return row.Balance, nil
}

func (r *Repository) Allowance(ctx context.Context, owner string, spender string) (uint64, error) {
	var row allowanceModel
	err := r.db.WithContext(ctx).
		Where("owner = ?", strings.TrimSpace(owner)).
		Where("spender = ?", strings.TrimSpace(spender)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("asset_repo_allowance_failed", err,
			"owner", strings.TrimSpace(owner),
			"spender", strings.TrimSpace(spender),
		)
	}
	return row.Remaining, nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]entities.Account, error) {
	var rows []accountModel
	err := r.db.WithContext(ctx).
		Order("address ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("asset_repo_list_accounts_failed", err)
	}
	items := make([]entities.Account, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) Mint(
	ctx context.Context,
	to string,
	amount uint64,
	at time.Time,
) (entities.Account, error) {
	to = strings.TrimSpace(to)
	var minted entities.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := creditAccount(tx, to, amount, at); err != nil {
			return err
		}
		var updated accountModel
		if err := tx.Where("address = ?", to).First(&updated).Error; err != nil {
			return err
		}
		minted = updated.toEntity()
		return nil
	})
	if err != nil {
		return entities.Account{}, r.logError("asset_repo_mint_failed", err,
			"address", to,
			"amount", amount,
		)
	}
	return minted, nil
}

func (r *Repository) Transfer(
	ctx context.Context,
	from string,
	to string,
	amount uint64,
	at time.Time,
) error {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return moveBalance(tx, from, to, amount, at)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInsufficientFunds) {
			return err
		}
		return r.logError("asset_repo_transfer_failed", err,
			"from", from,
			"to", to,
			"amount", amount,
		)
	}
	return nil
}

func (r *Repository) Approve(
	ctx context.Context,
	owner string,
	spender string,
	amount uint64,
	at time.Time,
) error {
	row := allowanceModel{
		Owner:     strings.TrimSpace(owner),
		Spender:   strings.TrimSpace(spender),
		Remaining: amount,
		UpdatedAt: at.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.Assignments(map[string]any{
			"remaining":  amount,
			"updated_at": at.UTC(),
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("asset_repo_approve_failed", create.Error,
			"owner", row.Owner,
			"spender", row.Spender,
		)
	}
	return nil
}

func (r *Repository) TransferFrom(
	ctx context.Context,
	spender string,
	from string,
	to string,
	amount uint64,
	at time.Time,
) error {
	spender = strings.TrimSpace(spender)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional debit keeps the allowance non-negative under
		// concurrent spenders.
		debit := tx.Model(&allowanceModel{}).
			Where("owner = ?", from).
			Where("spender = ?", spender).
			Where("remaining >= ?", amount).
			Updates(map[string]any{
				"remaining":  gorm.Expr("asset_allowances.remaining - ?", amount),
				"updated_at": at.UTC(),
			})
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return domainerrors.ErrInsufficientAllowance
		}
		return moveBalance(tx, from, to, amount, at)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInsufficientAllowance) ||
			errors.Is(err, domainerrors.ErrInsufficientFunds) {
			return err
		}
		return r.logError("asset_repo_transfer_from_failed", err,
			"spender", spender,
			"from", from,
			"to", to,
			"amount", amount,
		)
	}
	return nil
}

// moveBalance debits the source conditionally and credits the destination.
// Rolling back the surrounding transaction undoes both sides.
func moveBalance(tx *gorm.DB, from string, to string, amount uint64, at time.Time) error {
	debit := tx.Model(&accountModel{}).
		Where("address = ?", from).
		Where("balance >= ?", amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("asset_accounts.balance - ?", amount),
			"updated_at": at.UTC(),
		})
	if debit.Error != nil {
		return debit.Error
	}
	if debit.RowsAffected == 0 {
		return domainerrors.ErrInsufficientFunds
	}
	return creditAccount(tx, to, amount, at)
}

func creditAccount(tx *gorm.DB, address string, amount uint64, at time.Time) error {
	row := accountModel{
		Address:   address,
		Balance:   amount,
		UpdatedAt: at.UTC(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance":    gorm.Expr("asset_accounts.balance + ?", amount),
			"updated_at": at.UTC(),
		}),
	}).Create(&row).Error
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "finance/asset-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("asset repository operation failed", fields...)
	return err
}

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.LedgerRepository = (*Repository)(nil)

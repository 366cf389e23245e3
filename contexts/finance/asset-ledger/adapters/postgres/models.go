package postgresadapter

import (
	"time"

	"agora/contexts/finance/asset-ledger/domain/entities"
)

type accountModel struct {
	Address   string    `gorm:"column:address;primaryKey"`
	Balance   uint64    `gorm:"column:balance;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "asset_accounts" }

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		Address:   m.Address,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type allowanceModel struct {
	Owner     string    `gorm:"column:owner;primaryKey"`
	Spender   string    `gorm:"column:spender;primaryKey"`
	Remaining uint64    `gorm:"column:remaining;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (allowanceModel) TableName() string { return "asset_allowances" }

package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
)

type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	Insert(ctx context.Context, account *db_models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	FindByUsername(ctx context.Context, username string) (*db_models.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	AddGroup(ctx context.Context, id uuid.UUID, group access.Group) error
	SetGroups(ctx context.Context, id uuid.UUID, groups []access.Group) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (a *accountRepository) WithTx(tx *gorm.DB) AccountRepository {
	return &accountRepository{db: tx}
}

func (a *accountRepository) Insert(ctx context.Context, account *db_models.Account) error {
	return a.db.WithContext(ctx).Create(account).Error
}

func (a *accountRepository) preloaded(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).
		Preload("Groups").
		Preload("Profile").
		Preload("Profile.Agency")
}

func (a *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	var account db_models.Account
	err := a.preloaded(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.preloaded(ctx).First(&account, "LOWER(email) = LOWER(?)", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (a *accountRepository) FindByUsername(ctx context.Context, username string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.preloaded(ctx).First(&account, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (a *accountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return a.db.WithContext(ctx).
		Model(&db_models.Account{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (a *accountRepository) AddGroup(ctx context.Context, id uuid.UUID, group access.Group) error {
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db_models.AccountGroup{AccountID: id, Group: group}).Error
}

func (a *accountRepository) SetGroups(ctx context.Context, id uuid.UUID, groups []access.Group) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("account_id = ?", id).Delete(&db_models.AccountGroup{}).Error; err != nil {
			return err
		}
		seen := map[access.Group]bool{}
		for _, g := range groups {
			if seen[g] {
				continue
			}
			seen[g] = true
			if err := tx.Create(&db_models.AccountGroup{AccountID: id, Group: g}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

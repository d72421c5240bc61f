package repositories

import (
	"fmt"

	"walletwhiz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type backupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) BackupRepositoryInterface {
	return &backupRepository{db: db}
}

// Restore inserts categories first so the foreign keys of the other rows
// resolve.
func (r *backupRepository) Restore(backup *models.Backup) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			rows interface{}
			n    int
		}{
			{"categories", &backup.Categories, len(backup.Categories)},
			{"transactions", &backup.Transactions, len(backup.Transactions)},
			{"budgets", &backup.Budgets, len(backup.Budgets)},
			{"goals", &backup.Goals, len(backup.Goals)},
			{"templates", &backup.Templates, len(backup.Templates)},
			{"lending records", &backup.LendingRecords, len(backup.LendingRecords)},
			{"recurring payments", &backup.RecurringPayments, len(backup.RecurringPayments)},
		}
		for _, step := range steps {
			if step.n == 0 {
				continue
			}
			if err := tx.Omit(clause.Associations).CreateInBatches(step.rows, 100).Error; err != nil {
				return fmt.Errorf("failed to restore %s: %w", step.name, err)
			}
		}
		return nil
	})
}

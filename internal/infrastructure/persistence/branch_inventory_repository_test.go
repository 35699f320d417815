package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/beanpos/backend/internal/domain/shared"
)

// newMockBranchInventoryRepository creates a GormBranchInventoryRepository with a mocked SQL connection
func newMockBranchInventoryRepository(t *testing.T) (*GormBranchInventoryRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBranchInventoryRepository(gormDB), mock, mockDB
}

func TestGormBranchInventoryRepository_FindByBranchAndIngredient(t *testing.T) {
	t.Run("finds existing row", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchInventoryRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()
		branchID := uuid.New()
		ingredientID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "branch_id", "ingredient_id", "current_stock"}).
			AddRow(rowID, branchID, ingredientID, decimal.NewFromInt(250))

		mock.ExpectQuery(`SELECT \* FROM "branch_inventory" WHERE branch_id = \$1 AND ingredient_id = \$2`).
			WithArgs(branchID, ingredientID, 1).
			WillReturnRows(rows)

		row, err := repo.FindByBranchAndIngredient(context.Background(), branchID, ingredientID)

		assert.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, branchID, row.BranchID)
		assert.True(t, row.CurrentStock.Equal(decimal.NewFromInt(250)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for untracked pair", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchInventoryRepository(t)
		defer mockDB.Close()

		branchID := uuid.New()
		ingredientID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "branch_inventory" WHERE branch_id = \$1 AND ingredient_id = \$2`).
			WithArgs(branchID, ingredientID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		row, err := repo.FindByBranchAndIngredient(context.Background(), branchID, ingredientID)

		assert.Nil(t, row)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBranchInventoryRepository_FindByBranchAndIngredientForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchInventoryRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()
		branchID := uuid.New()
		ingredientID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "branch_id", "ingredient_id", "current_stock"}).
			AddRow(rowID, branchID, ingredientID, decimal.NewFromInt(100))

		mock.ExpectQuery(`SELECT \* FROM "branch_inventory" WHERE branch_id = \$1 AND ingredient_id = \$2 .* FOR UPDATE`).
			WithArgs(branchID, ingredientID, 1).
			WillReturnRows(rows)

		row, err := repo.FindByBranchAndIngredientForUpdate(context.Background(), branchID, ingredientID)

		assert.NoError(t, err)
		require.NotNil(t, row)
		assert.True(t, row.CurrentStock.Equal(decimal.NewFromInt(100)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBranchInventoryRepository_GetOrCreate(t *testing.T) {
	t.Run("inserts with conflict do nothing then loads locked", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchInventoryRepository(t)
		defer mockDB.Close()

		branchID := uuid.New()
		ingredientID := uuid.New()

		mock.ExpectExec(`INSERT INTO "branch_inventory" .* ON CONFLICT \("branch_id","ingredient_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows := sqlmock.NewRows([]string{"id", "branch_id", "ingredient_id", "current_stock"}).
			AddRow(uuid.New(), branchID, ingredientID, decimal.Zero)
		mock.ExpectQuery(`SELECT \* FROM "branch_inventory" WHERE branch_id = \$1 AND ingredient_id = \$2 .* FOR UPDATE`).
			WithArgs(branchID, ingredientID, 1).
			WillReturnRows(rows)

		row, err := repo.GetOrCreate(context.Background(), branchID, ingredientID)

		assert.NoError(t, err)
		require.NotNil(t, row)
		assert.True(t, row.CurrentStock.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBranchInventoryRepository_CountByBranch(t *testing.T) {
	t.Run("counts tracked rows", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchInventoryRepository(t)
		defer mockDB.Close()

		branchID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "branch_inventory" WHERE branch_id = \$1`).
			WithArgs(branchID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountByBranch(context.Background(), branchID)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a migrated database named by TEST_DATABASE_URL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE fee_record_items, fee_records, receipt_sequences, students, subjects`)
	require.NoError(t, err)
	return pool
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepository(testPool(t))

	require.NoError(t, repo.Create(ctx, &model.Student{SID: "0002", StudentName: "Zane", StudentGrade: "9"}))
	require.NoError(t, repo.Create(ctx, &model.Student{SID: "0001", StudentName: "Amara", StudentGrade: "10"}))

	err := repo.Create(ctx, &model.Student{SID: "0001", StudentName: "Other", StudentGrade: "11"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	got, err := repo.GetBySID(ctx, "0001")
	require.NoError(t, err)
	assert.Equal(t, "Amara", got.StudentName)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amara", list[0].StudentName)

	require.NoError(t, repo.Delete(ctx, "0002"))
	assert.ErrorIs(t, repo.Delete(ctx, "0002"), ErrNotFound)
	_, err = repo.GetBySID(ctx, "0002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubjectRepositoryUpdateFee(t *testing.T) {
	ctx := context.Background()
	repo := NewSubjectRepository(testPool(t))

	require.NoError(t, repo.Create(ctx, &model.Subject{SubjectCode: "MATH", SubjectName: "Mathematics", Fee: money.MustParse("1200")}))
	assert.ErrorIs(t, repo.Create(ctx, &model.Subject{SubjectCode: "MATH", SubjectName: "Again", Fee: money.Zero}), ErrDuplicateKey)

	updated, err := repo.UpdateFee(ctx, "MATH", money.MustParse("1350.5"))
	require.NoError(t, err)
	assert.Equal(t, "1350.50", updated.Fee.String())

	_, err = repo.UpdateFee(ctx, "NONE", money.Zero)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeeRecordRepositoryInsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	repo := NewFeeRecordRepository(pool)
	issuedAt := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

	newRecord := func() *model.FeeRecord {
		return &model.FeeRecord{
			StudentID:   "0001",
			StudentName: "Amara",
			MonthYear:   "March 2025",
			TotalAmount: money.MustParse("2200"),
			IssuedAt:    issuedAt,
			Items: []model.SelectedSubject{
				{SubjectCode: "MATH", SubjectName: "Mathematics", Fee: money.MustParse("1200")},
				{SubjectCode: "SCI", SubjectName: "Science", Fee: money.MustParse("1000")},
			},
		}
	}

	first := newRecord()
	require.NoError(t, repo.Insert(ctx, first, "REC"))
	assert.Equal(t, "REC-202503-000001", first.ReceiptNumber)

	second := newRecord()
	require.NoError(t, repo.Insert(ctx, second, "REC"))
	assert.Equal(t, "REC-202503-000002", second.ReceiptNumber)

	got, err := repo.FindByReceiptNumber(ctx, first.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, "2200.00", got.TotalAmount.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "MATH", got.Items[0].SubjectCode)

	t.Run("collision writes nothing and resyncs the counter", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE receipt_sequences SET last_value = 0 WHERE period = '202503'`)
		require.NoError(t, err)

		err = repo.Insert(ctx, newRecord(), "REC")
		assert.ErrorIs(t, err, ErrDuplicateKey)

		var items int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM fee_record_items`).Scan(&items))
		assert.Equal(t, 4, items)

		var last int64
		require.NoError(t, pool.QueryRow(ctx, `SELECT last_value FROM receipt_sequences WHERE period = '202503'`).Scan(&last))
		assert.Equal(t, int64(2), last)

		retry := newRecord()
		require.NoError(t, repo.Insert(ctx, retry, "REC"))
		assert.Equal(t, "REC-202503-000003", retry.ReceiptNumber)
	})

	t.Run("list filters newest first", func(t *testing.T) {
		list, err := repo.List(ctx, model.FeeRecordFilter{StudentID: "0001", MonthYear: "March 2025"})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "REC-202503-000003", list[0].ReceiptNumber)

		none, err := repo.List(ctx, model.FeeRecordFilter{StudentID: "9999"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	_, err = repo.FindByReceiptNumber(ctx, "REC-000000-000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

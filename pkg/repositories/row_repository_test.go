package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excelq/excelq-engine/pkg/models"
)

type execCall struct {
	sql  string
	args []any
}

// recordingTx captures Exec calls so batch composition can be asserted
// without a database.
type recordingTx struct {
	pgx.Tx
	calls   []execCall
	failOn  int
	execErr error
}

func (t *recordingTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.execErr != nil && len(t.calls) == t.failOn {
		return pgconn.CommandTag{}, t.execErr
	}
	t.calls = append(t.calls, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, nil
}

func makeRows(n int) []models.Row {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{RowNumber: i + 1, Data: models.RowData{"col": i + 1}}
	}
	return rows
}

func TestInsertRowsChunksBatches(t *testing.T) {
	tx := &recordingTx{}
	repo := &rowRepository{}
	sheetID := uuid.New()

	require.NoError(t, repo.InsertRows(context.Background(), tx, sheetID, makeRows(2500)))

	require.Len(t, tx.calls, 3)
	assert.Len(t, tx.calls[0].args, 1000*3)
	assert.Len(t, tx.calls[1].args, 1000*3)
	assert.Len(t, tx.calls[2].args, 500*3)

	// Row numbers stay contiguous across batch boundaries.
	assert.Equal(t, 1, tx.calls[0].args[1])
	assert.Equal(t, 1000, tx.calls[0].args[len(tx.calls[0].args)-2])
	assert.Equal(t, 1001, tx.calls[1].args[1])
	assert.Equal(t, 2500, tx.calls[2].args[len(tx.calls[2].args)-2])

	for _, call := range tx.calls {
		assert.True(t, strings.HasPrefix(call.sql, "INSERT INTO excel_data"))
		assert.Equal(t, sheetID, call.args[0])
	}

	// Placeholders are numbered per statement.
	assert.Contains(t, tx.calls[2].sql, fmt.Sprintf("$%d", 500*3))
	assert.NotContains(t, tx.calls[2].sql, fmt.Sprintf("$%d", 500*3+1))
}

func TestInsertRowsSingleBatch(t *testing.T) {
	tx := &recordingTx{}
	repo := &rowRepository{}

	require.NoError(t, repo.InsertRows(context.Background(), tx, uuid.New(), makeRows(7)))

	require.Len(t, tx.calls, 1)
	assert.Len(t, tx.calls[0].args, 7*3)
}

func TestInsertRowsEmptyInput(t *testing.T) {
	tx := &recordingTx{}
	repo := &rowRepository{}

	require.NoError(t, repo.InsertRows(context.Background(), tx, uuid.New(), nil))
	assert.Empty(t, tx.calls)
}

func TestInsertRowsStopsOnError(t *testing.T) {
	tx := &recordingTx{failOn: 1, execErr: fmt.Errorf("connection reset")}
	repo := &rowRepository{}

	err := repo.InsertRows(context.Background(), tx, uuid.New(), makeRows(2500))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert row batch")
	assert.Len(t, tx.calls, 1)
}

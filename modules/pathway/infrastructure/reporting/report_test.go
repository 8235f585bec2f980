package reporting_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracewave/gracewave/modules/pathway/infrastructure/reporting"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestFunnelRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT(.|\n)+FROM pathways p").
		WithArgs("GW-2026-ABC123XYZ").
		WillReturnRows(sqlmock.NewRows([]string{
			"pathway_id", "pathway_name", "step_name", "sort_order", "completed",
		}).
			AddRow("7b0d2b64-0000-0000-0000-000000000001", "Growth Track", "Welcome", 1, 42).
			AddRow("7b0d2b64-0000-0000-0000-000000000001", "Growth Track", "Baptism", 2, 17))

	rows, err := reporting.FunnelRows(context.Background(), db, "GW-2026-ABC123XYZ")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Growth Track", rows[0].PathwayName)
	assert.Equal(t, "Welcome", rows[0].StepName)
	assert.Equal(t, int64(42), rows[0].Completed)
	assert.Equal(t, 2, rows[1].SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFunnelRows_QueryError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT(.|\n)+FROM pathways p").
		WithArgs("GW-2026-ABC123XYZ").
		WillReturnError(assert.AnError)

	_, err := reporting.FunnelRows(context.Background(), db, "GW-2026-ABC123XYZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMembershipRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT(.|\n)+FROM churches c").
		WillReturnRows(sqlmock.NewRows([]string{
			"church_id", "church_name", "members", "campuses",
		}).
			AddRow("GW-2026-ABC123XYZ", "Grace Fellowship", 120, 3).
			AddRow("GW-2026-ZZZ999AAA", "New Hope", 15, 1))

	rows, err := reporting.MembershipRows(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(120), rows[0].Members)
	assert.Equal(t, int64(1), rows[1].Campuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

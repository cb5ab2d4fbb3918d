package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const probeQuery = "FROM information_schema.tables"

func TestEnsureSchemaCreatesOnlyMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"vehicles", "seats", "trips", "bookings", "seat_assignments"} {
		probe := mock.ExpectQuery(regexp.QuoteMeta(probeQuery)).WithArgs(table)
		if table == "bookings" {
			probe.WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
			mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS bookings")).
				WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		probe.WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(table))
	}

	require.NoError(t, EnsureSchema(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaStopsOnProbeError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta(probeQuery)).WithArgs("vehicles").
		WillReturnError(errors.New("access denied for information_schema"))

	err = EnsureSchema(context.Background(), conn)
	require.ErrorContains(t, err, "probe table vehicles")
	require.NoError(t, mock.ExpectationsWereMet())
}

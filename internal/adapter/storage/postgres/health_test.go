package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock, DefaultApplicationTable)
	assert.Equal(t, "postgresql", hc.Name())

	mock.ExpectQuery("SELECT to_regclass").
		WithArgs(`"mentorship_applications_2026"`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	assert.NoError(t, hc.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_MissingTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock, "applications")

	mock.ExpectQuery("SELECT to_regclass").
		WithArgs(`"applications"`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	assert.ErrorContains(t, hc.Ping(context.Background()), "applications does not exist")
}

func TestHealthCheck_Unreachable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock, DefaultApplicationTable)

	mock.ExpectQuery("SELECT to_regclass").WillReturnError(errors.New("connection refused"))

	assert.Error(t, hc.Ping(context.Background()))
}

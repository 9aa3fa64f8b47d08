package services

import (
	"context"
	"testing"
	"time"

	"eventalbum/internal/domain"
	"eventalbum/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadService_MalformedEventIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := newFakeObjectStore()
	svc := NewUploadService(postgres.NewEventRepository(db), postgres.NewMediaRepository(db), store,
		NewMediaValidator(0), &recordingObserver{}, testLogger, time.Second)
	malformed := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`}

	mock.ExpectQuery(`FROM events WHERE id = \$1`).WithArgs("not-a-uuid").WillReturnError(malformed)
	_, err = svc.Submit(context.Background(), jpegInput("not-a-uuid", "Elif", "data"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, store.puts)

	mock.ExpectQuery(`FROM events WHERE id = \$1`).WithArgs("not-a-uuid").WillReturnError(malformed)
	_, err = svc.DeleteAllForEvent(context.Background(), "not-a-uuid", "org-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

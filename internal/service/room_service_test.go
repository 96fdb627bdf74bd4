package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zamora/internal/models"
)

var roomColumns = []string{"id", "property_id", "number", "status"}

func TestRoomUpdateStatusPublishesChange(t *testing.T) {
	d := newDeps(t)
	svc := NewRoomService(d.store, d.events)

	d.mock.ExpectBegin()
	d.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-1").
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow("room-1", "p1", "101", "dirty"))
	d.mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET status = $1")).
		WithArgs("clean", "room-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	d.mock.ExpectCommit()

	room, err := svc.UpdateStatus(context.Background(), "room-1", models.RoomStatusClean)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusClean, room.Status)

	require.Len(t, d.writer.events, 1)
	assert.Equal(t, "room-room-1", d.writer.events[0].key)
	event, ok := d.writer.events[0].event.(*models.RoomStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "dirty", event.FromStatus)
	assert.Equal(t, models.RoomStatusClean, event.Room.Status)
	assert.NoError(t, d.mock.ExpectationsWereMet())
}

func TestRoomUpdateStatusRejects(t *testing.T) {
	d := newDeps(t)
	svc := NewRoomService(d.store, d.events)

	d.mock.ExpectBegin()
	d.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM rooms WHERE id = $1 FOR UPDATE")).
		WithArgs("room-1").
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow("room-1", "p1", "101", "occupied"))
	d.mock.ExpectRollback()

	_, err := svc.UpdateStatus(context.Background(), "room-1", models.RoomStatusClean)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.UpdateStatus(context.Background(), "room-1", "haunted")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, d.writer.events)
	assert.NoError(t, d.mock.ExpectationsWereMet())
}

func TestFolioReopenConflictsWithNewerOpenFolio(t *testing.T) {
	d := newDeps(t)
	svc := NewFolioService(d.store, d.events)

	d.mock.ExpectBegin()
	d.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM folios WHERE id = $1 FOR UPDATE")).
		WithArgs("folio-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).AddRow("folio-1", "booking-1", "closed"))
	d.mock.ExpectQuery(regexp.QuoteMeta("UPDATE folios SET status = $1")).
		WillReturnError(&pq.Error{Code: "23505"})
	d.mock.ExpectRollback()

	_, err := svc.UpdateStatus(context.Background(), "folio-1", models.FolioStatusOpen)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, d.mock.ExpectationsWereMet())
}

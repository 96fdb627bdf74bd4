package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"zamora/internal/broker"
	"zamora/internal/redisclient"
	"zamora/internal/store"
)

type published struct {
	key   string
	event any
}

type recordingWriter struct {
	events []published
}

func (w *recordingWriter) PublishEvent(_ context.Context, key string, event any) error {
	w.events = append(w.events, published{key: key, event: event})
	return nil
}

type deps struct {
	store  *store.Store
	mock   sqlmock.Sqlmock
	redis  *redisclient.Client
	mr     *miniredis.Miniredis
	writer *recordingWriter
	events *broker.EventPublisher
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	w := &recordingWriter{}
	return &deps{
		store:  store.New(sqlx.NewDb(db, "postgres")),
		mock:   mock,
		redis:  redisclient.New(rdb),
		mr:     mr,
		writer: w,
		events: broker.NewEventPublisher(w),
	}
}

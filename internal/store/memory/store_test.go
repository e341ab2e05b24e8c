package memory

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/errors"
	"timesheet/internal/store"
)

func sequentialIDs() store.IDGenerator {
	n := 0
	return store.IDFunc(func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	})
}

func TestCreateAndList(t *testing.T) {
	s := New(WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	a, err := s.Create(ctx, store.Logs, store.Payload{"label": "a"})
	require.NoError(t, err)
	b, err := s.Create(ctx, store.Logs, store.Payload{"label": "b"})
	require.NoError(t, err)

	assert.Equal(t, "doc-1", a.Key)
	assert.Equal(t, int64(1), a.Version)

	docs, err := s.List(ctx, store.Logs, store.Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a.Key, docs[0].Key, "creation order")
	assert.Equal(t, b.Key, docs[1].Key)

	limited, err := s.List(ctx, store.Logs, store.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	empty, err := s.List(ctx, store.ActiveTimers, store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	data := store.Payload{"label": "x"}

	doc, err := s.Create(ctx, store.Logs, data)
	require.NoError(t, err)
	data["label"] = "mutated"
	doc.Data["label"] = "mutated too"

	docs, err := s.List(ctx, store.Logs, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "x", docs[0].Data["label"])
}

func TestUpdateBumpsVersionAndDetectsConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	doc, err := s.Create(ctx, store.ActiveTimers, store.Payload{"label": ""})
	require.NoError(t, err)

	doc.Data = doc.Data.With("label", "first")
	updated, err := s.Update(ctx, store.ActiveTimers, doc)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	// doc still carries version 1
	_, err = s.Update(ctx, store.ActiveTimers, doc)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))

	err = s.Delete(ctx, store.ActiveTimers, doc)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))

	require.NoError(t, s.Delete(ctx, store.ActiveTimers, updated))
	assert.Equal(t, 0, s.Len(store.ActiveTimers))

	err = s.Delete(ctx, store.ActiveTimers, updated)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestInterceptorFailsWithoutSideEffects(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := stderrors.New("network down")

	s.Intercept(func(ctx context.Context, op store.Op, coll store.Collection) error {
		if op == store.OpCreate {
			return boom
		}
		return nil
	})

	_, err := s.Create(ctx, store.Logs, store.Payload{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len(store.Logs))

	s.Intercept(nil)
	_, err = s.Create(ctx, store.Logs, store.Payload{})
	assert.NoError(t, err)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.List(ctx, store.Logs, store.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

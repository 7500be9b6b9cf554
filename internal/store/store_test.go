package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCollectionLoadAbsentIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	recs, err := NewCollection[rec]("bluujobs_users").LoadFrom(context.Background(), kv)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestCollectionSaveLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	col := NewCollection[rec]("bluujobs_users")
	want := []rec{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}

	require.NoError(t, col.Overwrite(ctx, kv, want))
	first, err := kv.Get(ctx, col.Key)
	require.NoError(t, err)

	loaded, err := col.LoadFrom(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, want, loaded)

	require.NoError(t, col.Overwrite(ctx, kv, loaded))
	second, err := kv.Get(ctx, col.Key)
	require.NoError(t, err)
	assert.Equal(t, first.Value, second.Value)
}

func TestCollectionCorruptFailsClosed(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Commit(ctx, []Write{{Key: "bluujobs_jobs", Kind: WritePut, Value: []byte("{not json"), Expected: AnyVersion}}))

	_, err := NewCollection[rec]("bluujobs_jobs").LoadFrom(ctx, kv)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "bluujobs_jobs")
}

func TestCollectionNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Commit(ctx, []Write{{Key: "k", Kind: WritePut, Value: []byte("null"), Expected: AnyVersion}}))

	recs, err := NewCollection[rec]("k").LoadFrom(ctx, kv)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTxnReadYourWrites(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryKV())
	col := NewCollection[rec]("c")

	err := s.Update(ctx, func(ctx context.Context, tx *Txn) error {
		require.NoError(t, col.Save(ctx, tx, []rec{{ID: "1"}}))
		got, err := col.Load(ctx, tx)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateErrorDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryKV())
	col := NewCollection[rec]("c")
	boom := errors.New("boom")

	err := s.Update(ctx, func(ctx context.Context, tx *Txn) error {
		_ = col.Save(ctx, tx, []rec{{ID: "1"}})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := col.LoadFrom(ctx, s.KV())
	require.NoError(t, err)
	assert.Empty(t, got)
}

// racingKV lets a rival writer bump a key between the read and the commit.
type racingKV struct {
	*MemoryKV
	races int
}

func (r *racingKV) Commit(ctx context.Context, writes []Write) error {
	if r.races > 0 {
		r.races--
		_ = r.MemoryKV.Commit(ctx, []Write{{Key: "c", Kind: WritePut, Value: []byte(`[{"id":"rival"}]`), Expected: AnyVersion}})
	}
	return r.MemoryKV.Commit(ctx, writes)
}

func TestUpdateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	kv := &racingKV{MemoryKV: NewMemoryKV(), races: 2}
	s := New(kv)
	col := NewCollection[rec]("c")

	calls := 0
	err := s.Update(ctx, func(ctx context.Context, tx *Txn) error {
		calls++
		got, err := col.Load(ctx, tx)
		if err != nil {
			return err
		}
		return col.Save(ctx, tx, append(got, rec{ID: "mine"}))
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	got, err := col.LoadFrom(ctx, kv)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rival", got[0].ID)
	assert.Equal(t, "mine", got[1].ID)
}

func TestUpdateGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	kv := &racingKV{MemoryKV: NewMemoryKV(), races: 10}
	s := New(kv, WithMaxAttempts(2))
	col := NewCollection[rec]("c")

	err := s.Update(ctx, func(ctx context.Context, tx *Txn) error {
		got, err := col.Load(ctx, tx)
		if err != nil {
			return err
		}
		return col.Save(ctx, tx, append(got, rec{ID: "mine"}))
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCommitHookReceivesChangedKeys(t *testing.T) {
	ctx := context.Background()
	var got []string
	s := New(NewMemoryKV(), WithCommitHook(func(_ context.Context, keys []string) {
		got = append(got, keys...)
	}))

	require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Txn) error {
		if err := tx.Put(ctx, "b", []byte(`1`)); err != nil {
			return err
		}
		return tx.Put(ctx, "a", []byte(`1`))
	}))
	assert.Equal(t, []string{"b", "a"}, got)

	got = nil
	require.NoError(t, s.View(ctx, func(ctx context.Context, tx *Txn) error {
		_, _, err := tx.Get(ctx, "a")
		return err
	}))
	assert.Nil(t, got)
}

func TestTxnWritesIncludeReadChecks(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Commit(ctx, []Write{{Key: "r", Kind: WritePut, Value: []byte(`1`), Expected: 0}}))

	tx := newTxn(kv)
	_, _, err := tx.Get(ctx, "r")
	require.NoError(t, err)
	require.NoError(t, tx.Put(ctx, "w", []byte(`2`)))

	writes := tx.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, WritePut, writes[0].Kind)
	assert.Equal(t, "w", writes[0].Key)
	assert.Equal(t, WriteCheck, writes[1].Kind)
	assert.Equal(t, int64(1), writes[1].Expected)
}

func TestKeys(t *testing.T) {
	k := NewKeys("")
	assert.Equal(t, "bluujobs_users", k.Collection(CollectionUsers))
	assert.Equal(t, "bluujobs_current_user", k.Session(""))
	assert.Equal(t, "bluujobs_current_user:abc", k.Session("abc"))
	assert.Equal(t, "bluujobs_sessions", k.SessionIndex())

	name, ok := k.CollectionName("bluujobs_jobs")
	assert.True(t, ok)
	assert.Equal(t, "jobs", name)
	_, ok = k.CollectionName("bluujobs_current_user")
	assert.False(t, ok)
}

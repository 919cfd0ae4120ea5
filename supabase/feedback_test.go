package supabase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

type recordingInserter struct {
	failures int
	calls    int
	table    string
	row      any
}

func (r *recordingInserter) insert(table string, row any) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("connection reset")
	}
	r.table, r.row = table, row
	return nil
}

var verdict = types.Feedback{
	PokeID:       "3f0e6a4e-5d5c-4b0c-9b7a-1d2a3c4e5f60",
	UserID:       "user-1",
	UserFeedback: types.VerdictWrongOffTask,
}

func TestFeedbackStore_InsertsIntoFeedbackTable(t *testing.T) {
	rec := &recordingInserter{}
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	s := NewFeedbackStore(rec.insert, WithClock(func() time.Time { return at }))

	require.True(t, s.Store(context.Background(), verdict))

	assert.Equal(t, "feedback", rec.table)
	row, ok := rec.row.(types.Feedback)
	require.True(t, ok)
	assert.Equal(t, verdict.PokeID, row.PokeID)
	assert.Equal(t, at, row.CreatedAt)
}

func TestFeedbackStore_RetriesTransientFailures(t *testing.T) {
	rec := &recordingInserter{failures: 2}
	s := NewFeedbackStore(rec.insert, WithBackOff(fastBackOff))

	assert.True(t, s.Store(context.Background(), verdict))
	assert.Equal(t, 3, rec.calls)
}

func TestFeedbackStore_GivesUpAfterMaxTries(t *testing.T) {
	rec := &recordingInserter{failures: 10}
	s := NewFeedbackStore(rec.insert, WithBackOff(fastBackOff), WithMaxTries(4))

	assert.False(t, s.Store(context.Background(), verdict))
	assert.Equal(t, 4, rec.calls)
}

func TestFeedbackStore_WithoutInserterOnlyLogs(t *testing.T) {
	assert.True(t, NewFeedbackStore(nil).Store(context.Background(), verdict))
}

func TestNewFeedbackStoreFromSettings_FallsBackToLogOnly(t *testing.T) {
	s := config.DefaultSettings()
	assert.Nil(t, NewFeedbackStoreFromSettings(s).insert)

	s.SupabaseURL = "https://example.supabase.co"
	s.MockMode = true
	assert.Nil(t, NewFeedbackStoreFromSettings(s).insert)

	s.MockMode = false
	s.SupabaseKey = ""
	assert.Nil(t, NewFeedbackStoreFromSettings(s).insert)
}

func TestNewClient_RequiresURLAndKey(t *testing.T) {
	_, err := NewClient("", "key")
	assert.Error(t, err)
	_, err = NewClient("https://example.supabase.co", "")
	assert.Error(t, err)
}

package supabase

import (
	"context"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"github.com/supabase-community/supabase-go"
)

const (
	feedbackTable = "feedback"

	DefaultInsertTries = 3
)

// InsertFunc writes one row into table
type InsertFunc func(table string, row any) error

// ClientInserter inserts through a Supabase client
func ClientInserter(client *supabase.Client) InsertFunc {
	return func(table string, row any) error {
		_, _, err := client.From(table).Insert(row, false, "", "", "").Execute()
		return err
	}
}

// FeedbackStore persists poke verdicts. A store without an inserter only
// logs, which is what mock mode and unconfigured installs get.
type FeedbackStore struct {
	insert   InsertFunc
	maxTries uint
	newBack  func() backoff.BackOff
	now      func() time.Time
}

type StoreOption func(*FeedbackStore)

func WithMaxTries(n uint) StoreOption {
	return func(s *FeedbackStore) {
		if n > 0 {
			s.maxTries = n
		}
	}
}

func WithBackOff(newBack func() backoff.BackOff) StoreOption {
	return func(s *FeedbackStore) {
		s.newBack = newBack
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *FeedbackStore) {
		s.now = now
	}
}

func NewFeedbackStore(insert InsertFunc, opts ...StoreOption) *FeedbackStore {
	s := &FeedbackStore{
		insert:   insert,
		maxTries: DefaultInsertTries,
		newBack: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFeedbackStoreFromSettings picks the real store when Supabase is
// configured and the log-only one otherwise.
func NewFeedbackStoreFromSettings(s config.Settings) *FeedbackStore {
	if s.MockMode || s.SupabaseURL == "" {
		config.Logger.Info("Feedback store running without Supabase, verdicts will only be logged")
		return NewFeedbackStore(nil)
	}

	client, err := NewClient(s.SupabaseURL, s.SupabaseKey)
	if err != nil {
		config.Logger.WithError(err).Warn("Feedback store unavailable, verdicts will only be logged")
		return NewFeedbackStore(nil)
	}
	return NewFeedbackStore(ClientInserter(client))
}

// Store reports whether fb was persisted. Failed inserts are retried with
// exponential backoff before giving up.
func (s *FeedbackStore) Store(ctx context.Context, fb types.Feedback) bool {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = s.now().UTC()
	}
	log := config.Logger.WithFields(logrus.Fields{
		"poke_id":       fb.PokeID,
		"user_id":       fb.UserID,
		"user_feedback": fb.UserFeedback,
	})

	if s.insert == nil {
		log.Info("Feedback received (not persisted)")
		return true
	}

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		return struct{}{}, s.insert(feedbackTable, fb)
	}, backoff.WithBackOff(s.newBack()), backoff.WithMaxTries(s.maxTries))
	if err != nil {
		log.WithField("attempts", attempts).WithError(err).Error("Failed to save feedback")
		return false
	}

	log.Debug("Feedback saved")
	return true
}

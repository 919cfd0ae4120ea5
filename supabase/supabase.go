package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// NewClient connects with the service key. Unlike the rest of startup a
// missing store is not fatal: feedback just falls back to the log.
func NewClient(apiURL, apiKey string) (*supabase.Client, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
	}

	client, err := supabase.NewClient(apiURL, apiKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, nil
}

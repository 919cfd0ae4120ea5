package handlers

import (
	"context"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"
)

// Agent is everything the HTTP surface needs from the core
type Agent interface {
	Snapshot(ctx context.Context) types.ActivitySnapshot
	Classify(ctx context.Context, req types.ClassifyRequest) types.ClassificationResult
	ClassifyLocal(ctx context.Context, req types.ClassifyRequest) (types.ClassificationResult, error)
	Nudge(ctx context.Context, sender string) types.NudgeResult
	Runtime() *config.Runtime
	CacheStats() types.CacheStats
}

type FeedbackSink interface {
	Store(ctx context.Context, fb types.Feedback) bool
}

// Handler carries the dependencies every route shares
type Handler struct {
	agent      Agent
	feedback   FeedbackSink
	localModel *LocalModelProbe
}

func New(agent Agent, feedback FeedbackSink, localModel *LocalModelProbe) *Handler {
	return &Handler{
		agent:      agent,
		feedback:   feedback,
		localModel: localModel,
	}
}

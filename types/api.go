package types

type ErrorResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	ActivityService string `json:"activity_service"`
	LLMService      string `json:"llm_service"`
	LocalModel      string `json:"local_model"`
}

type CacheStats struct {
	Size      int    `json:"size"`
	MaxSize   int    `json:"maxsize"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

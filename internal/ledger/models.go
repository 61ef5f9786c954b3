package ledger

import "time"

// Status is the lifecycle state of one shard composition run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run records one attempt to composite audio for a shard.
type Run struct {
	ID           int64
	RunID        string
	ManifestPath string
	ShardStart   int
	ShardEnd     int
	Format       string
	Status       Status
	OutputPath   string
	ErrorMessage string
	SegmentCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

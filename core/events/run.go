package events

import (
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// RunEvent is published after every optimizer run.
type RunEvent struct {
	RunID   string
	Request model.ScheduleRequest
	Result  model.ScheduleResult
	DryRun  bool
	Time    time.Time
}

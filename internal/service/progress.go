package service

import (
	"sync"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// progressCap keeps reported progress below 100% until the run signals true
// completion, so the UI never shows done while post-processing is running.
const progressCap = 95

// ProgressTracker is the in-memory read model for in-flight syncs, keyed by
// channel ID. The poll goroutine writes it; the progress handler reads it.
type ProgressTracker struct {
	mu   sync.RWMutex
	runs map[string]model.SyncProgress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{runs: make(map[string]model.SyncProgress)}
}

// Begin registers a queued sync for a channel.
func (t *ProgressTracker) Begin(channelID string, estimatedTotal int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[channelID] = model.SyncProgress{
		ChannelID:      channelID,
		Status:         model.SyncStatusQueued,
		EstimatedTotal: estimatedTotal,
	}
}

// SetStatus moves a run to the given phase.
func (t *ProgressTracker) SetStatus(channelID, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[channelID]
	if !ok {
		return
	}
	p.Status = status
	t.runs[channelID] = p
}

// SetStored updates the stored-row count and recomputes the capped percent.
func (t *ProgressTracker) SetStored(channelID string, stored int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[channelID]
	if !ok {
		return
	}
	p.StoredVideos = stored
	p.Percent = cappedPercent(stored, p.EstimatedTotal)
	t.runs[channelID] = p
}

// Complete marks a run done at 100%.
func (t *ProgressTracker) Complete(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[channelID]
	if !ok {
		return
	}
	p.Status = model.SyncStatusDone
	p.Percent = 100
	t.runs[channelID] = p
}

// Fail marks a run failed and resets progress to zero.
func (t *ProgressTracker) Fail(channelID string, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[channelID]
	if !ok {
		p = model.SyncProgress{ChannelID: channelID}
	}
	p.Status = model.SyncStatusFailed
	p.Percent = 0
	p.Error = errMsg
	t.runs[channelID] = p
}

// Rekey moves an in-flight run to its canonical channel ID once resolution
// supplies one. Runs started from a handle or URL are registered under the
// normalized input until then.
func (t *ProgressTracker) Rekey(oldKey, newKey string) {
	if oldKey == newKey {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[oldKey]
	if !ok {
		return
	}
	delete(t.runs, oldKey)
	p.ChannelID = newKey
	t.runs[newKey] = p
}

// Get returns the progress for a channel and whether any run is known.
func (t *ProgressTracker) Get(channelID string) (model.SyncProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.runs[channelID]
	return p, ok
}

func cappedPercent(stored, estimated int64) int {
	if estimated <= 0 {
		return 0
	}
	pct := int(stored * 100 / estimated)
	if pct > progressCap {
		return progressCap
	}
	if pct < 0 {
		return 0
	}
	return pct
}

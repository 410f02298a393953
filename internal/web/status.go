package web

import (
	"sync"
	"time"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

// StatusStore is the shared snapshot the engine publishes into after each
// cycle and the web server reads from. All fields are replaced wholesale on
// publish; readers always see a consistent cycle.
type StatusStore struct {
	mu            sync.RWMutex
	cycleID       string
	cycleAt       time.Time
	opportunities []types.Opportunity
	decision      *types.RebalanceDecision
	parameters    types.EngineParameters
}

// NewStatusStore returns an empty store with the given parameter set.
func NewStatusStore(params types.EngineParameters) *StatusStore {
	return &StatusStore{parameters: params}
}

// PublishCycle records the outcome of one engine cycle.
func (s *StatusStore) PublishCycle(cycleID string, opportunities []types.Opportunity, decision types.RebalanceDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleID = cycleID
	s.cycleAt = time.Now().UTC()
	s.opportunities = opportunities
	s.decision = &decision
}

// LatestDecision returns the most recent decision, or false when no cycle has
// completed yet.
func (s *StatusStore) LatestDecision() (string, types.RebalanceDecision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.decision == nil {
		return "", types.RebalanceDecision{}, false
	}
	return s.cycleID, *s.decision, true
}

// Opportunities returns the most recent ranked opportunity list.
func (s *StatusStore) Opportunities() []types.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Opportunity, len(s.opportunities))
	copy(out, s.opportunities)
	return out
}

// Parameters returns the active parameter set.
func (s *StatusStore) Parameters() types.EngineParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parameters
}

// SetParameters replaces the active parameter set shown by the API.
func (s *StatusStore) SetParameters(params types.EngineParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parameters = params
}

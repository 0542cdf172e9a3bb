package alerts

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freealert/freealert/internal/models"
)

// MAType 均线窗口 (window in days encoded in the name)
type MAType string

const (
	MA50  MAType = "MA50"
	MA100 MAType = "MA100"
	MA200 MAType = "MA200"
)

// Days returns the window length of the moving average.
func (t MAType) Days() int {
	days, _ := strconv.Atoi(string(t)[2:])
	return days
}

func (t MAType) valid() bool {
	return t == MA50 || t == MA100 || t == MA200
}

// Condition 触发方向
type Condition string

const (
	Above Condition = "above"
	Below Condition = "below"
)

// Status of an alert for display.
type Status string

const (
	// StatusPending until the first recheck has produced both values.
	StatusPending Status = "pending"
	// StatusWaiting when the condition does not currently hold.
	StatusWaiting Status = "waiting"
	// StatusTriggered when it does.
	StatusTriggered Status = "triggered"
)

// Alert is a user-created moving-average watch. Held in memory only; the
// registry is wiped on restart by design.
type Alert struct {
	ID        string    `json:"id"`
	CoinID    string    `json:"coinId"`
	Symbol    string    `json:"symbol"`
	MAType    MAType    `json:"maType"`
	Condition Condition `json:"condition"`
	IsActive  bool      `json:"isActive"`
	LastPrice *float64  `json:"lastPrice,omitempty"`
	CurrentMA *float64  `json:"currentMA,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Status    Status    `json:"status"`
}

// EvaluateCondition reports whether price strictly satisfies the condition
// against the moving average.
func EvaluateCondition(lastPrice, ma float64, condition Condition) bool {
	switch condition {
	case Above:
		return lastPrice > ma
	case Below:
		return lastPrice < ma
	default:
		return false
	}
}

// StatusOf derives the display status: pending until both values exist,
// triggered while the condition holds, waiting otherwise.
func StatusOf(a Alert) Status {
	if a.LastPrice == nil || a.CurrentMA == nil {
		return StatusPending
	}
	if EvaluateCondition(*a.LastPrice, *a.CurrentMA, a.Condition) {
		return StatusTriggered
	}
	return StatusWaiting
}

// Registry in-memory alert store. Created by user action, refreshed by the
// recheck pass, removed by explicit user action.
type Registry struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
	seq    atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{alerts: make(map[string]*Alert)}
}

// Add validates and stores a new active alert.
func (r *Registry) Add(coinID, symbol string, maType MAType, condition Condition) (*Alert, error) {
	if symbol == "" {
		return nil, &models.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if !maType.valid() {
		return nil, &models.ValidationError{Field: "maType", Reason: "must be MA50, MA100 or MA200"}
	}
	if condition != Above && condition != Below {
		return nil, &models.ValidationError{Field: "condition", Reason: "must be above or below"}
	}

	alert := &Alert{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixMilli(), r.seq.Add(1)),
		CoinID:    coinID,
		Symbol:    symbol,
		MAType:    maType,
		Condition: condition,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.alerts[alert.ID] = alert
	r.mu.Unlock()
	return alert, nil
}

// List returns snapshot copies sorted by creation time, status populated.
func (r *Registry) List() []Alert {
	r.mu.RLock()
	out := make([]Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		copy := *a
		copy.Status = StatusOf(copy)
		out = append(out, copy)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Remove deletes an alert, reporting whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return false
	}
	delete(r.alerts, id)
	return true
}

// active returns copies of the alerts the recheck pass should evaluate.
func (r *Registry) active() []Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if a.IsActive {
			out = append(out, *a)
		}
	}
	return out
}

// record stores the values of a finished evaluation on the live alert.
func (r *Registry) record(id string, lastPrice, currentMA float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.alerts[id]; ok {
		a.LastPrice = &lastPrice
		a.CurrentMA = &currentMA
	}
}

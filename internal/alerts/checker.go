package alerts

import (
	"context"

	"github.com/freealert/freealert/internal/indicators"
)

// HistoryProvider supplies daily closing prices, oldest first.
type HistoryProvider interface {
	DailyCloses(ctx context.Context, symbol string, limit int) ([]float64, error)
}

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Checker runs one recheck pass over the registry. Alerts are evaluated
// sequentially; a failure on one alert is logged and the pass continues with
// the rest.
type Checker struct {
	registry *Registry
	history  HistoryProvider
	logger   Logger
}

func NewChecker(registry *Registry, history HistoryProvider, logger Logger) *Checker {
	return &Checker{registry: registry, history: history, logger: logger}
}

// CheckAll re-evaluates every active alert against a fresh history fetch,
// refreshing lastPrice/currentMA in place and logging triggered conditions.
func (c *Checker) CheckAll(ctx context.Context) {
	active := c.registry.active()
	if len(active) == 0 {
		return
	}

	for _, alert := range active {
		days := alert.MAType.Days()

		closes, err := c.history.DailyCloses(ctx, alert.Symbol, days)
		if err != nil {
			c.logger.Error("alert recheck failed",
				"alert_id", alert.ID,
				"symbol", alert.Symbol,
				"error", err)
			continue
		}
		if len(closes) < days {
			c.logger.Info("not enough history for alert",
				"alert_id", alert.ID,
				"symbol", alert.Symbol,
				"have", len(closes),
				"need", days)
			continue
		}

		ma := indicators.MovingAverage(closes, days)
		lastPrice := closes[len(closes)-1]
		c.registry.record(alert.ID, lastPrice, ma)

		if EvaluateCondition(lastPrice, ma, alert.Condition) {
			c.logger.Info("alert triggered",
				"alert_id", alert.ID,
				"symbol", alert.Symbol,
				"condition", alert.Condition,
				"ma_type", alert.MAType,
				"last_price", lastPrice,
				"current_ma", ma)
		}
	}
}

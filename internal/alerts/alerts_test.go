package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freealert/freealert/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestMAType_Days(t *testing.T) {
	assert.Equal(t, 50, MA50.Days())
	assert.Equal(t, 100, MA100.Days())
	assert.Equal(t, 200, MA200.Days())
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name      string
		lastPrice float64
		ma        float64
		condition Condition
		want      bool
	}{
		{"above holds", 105, 100, Above, true},
		{"above strict at equality", 100, 100, Above, false},
		{"above fails", 95, 100, Above, false},
		{"below holds", 95, 100, Below, true},
		{"below strict at equality", 100, 100, Below, false},
		{"below fails", 105, 100, Below, false},
		{"unknown condition never holds", 105, 100, Condition("crossed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(tt.lastPrice, tt.ma, tt.condition))
		})
	}
}

func TestStatusOf(t *testing.T) {
	base := Alert{Condition: Above}

	t.Run("pending before first evaluation", func(t *testing.T) {
		assert.Equal(t, StatusPending, StatusOf(base))

		withPrice := base
		withPrice.LastPrice = floatPtr(105)
		assert.Equal(t, StatusPending, StatusOf(withPrice))
	})

	t.Run("triggered while the condition holds", func(t *testing.T) {
		a := base
		a.LastPrice = floatPtr(105)
		a.CurrentMA = floatPtr(100)
		assert.Equal(t, StatusTriggered, StatusOf(a))
	})

	t.Run("waiting otherwise", func(t *testing.T) {
		a := base
		a.LastPrice = floatPtr(95)
		a.CurrentMA = floatPtr(100)
		assert.Equal(t, StatusWaiting, StatusOf(a))
	})
}

func TestRegistry_Add(t *testing.T) {
	registry := NewRegistry()

	t.Run("stores a valid alert", func(t *testing.T) {
		alert, err := registry.Add("bitcoin", "BTC", MA200, Below)
		require.NoError(t, err)

		assert.NotEmpty(t, alert.ID)
		assert.True(t, alert.IsActive)
		assert.Nil(t, alert.LastPrice)
		assert.Nil(t, alert.CurrentMA)
		assert.False(t, alert.CreatedAt.IsZero())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		tests := []struct {
			name      string
			symbol    string
			maType    MAType
			condition Condition
		}{
			{"empty symbol", "", MA50, Above},
			{"unknown ma type", "BTC", MAType("MA7"), Above},
			{"unknown condition", "BTC", MA50, Condition("equals")},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := registry.Add("bitcoin", tt.symbol, tt.maType, tt.condition)

				var validation *models.ValidationError
				assert.ErrorAs(t, err, &validation)
			})
		}
	})

	t.Run("generated IDs are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			alert, err := registry.Add("ethereum", "ETH", MA50, Above)
			require.NoError(t, err)
			assert.False(t, seen[alert.ID], "duplicate id %s", alert.ID)
			seen[alert.ID] = true
		}
	})
}

func TestRegistry_ListAndRemove(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Add("bitcoin", "BTC", MA200, Below)
	require.NoError(t, err)
	second, err := registry.Add("ethereum", "ETH", MA50, Above)
	require.NoError(t, err)

	list := registry.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "list sorted by creation")
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, StatusPending, list[0].Status)

	assert.True(t, registry.Remove(first.ID))
	assert.False(t, registry.Remove(first.ID), "second removal reports absence")
	assert.Len(t, registry.List(), 1)
}

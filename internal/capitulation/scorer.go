package capitulation

import (
	"fmt"

	"github.com/freealert/freealert/internal/models"
)

// Score maps the five signals onto four independently capped sub-scores and a
// discrete level. Pure and deterministic: no I/O, no clock, no state.
//
// Within a category only the highest matching tier applies; the severe-drop
// bonus is additive on top of the price tier. The final score is the capped
// sum, and the signal texts are emitted in category order so the dashboard
// list is stable.
func Score(signals models.CapitulationSignals) models.CapitulationResult {
	var breakdown models.Breakdown
	texts := make([]string, 0, 5)

	// Price drop (up to 40 + 10 bonus)
	switch {
	case signals.PriceDropSeverity <= -25:
		breakdown.PriceScore = 40
		texts = append(texts, fmt.Sprintf("Severe market drop (%.1f%%)", signals.PriceDropSeverity))
	case signals.PriceDropSeverity <= -15:
		breakdown.PriceScore = 30
		texts = append(texts, fmt.Sprintf("Notable market drop (%.1f%%)", signals.PriceDropSeverity))
	case signals.PriceDropSeverity <= -10:
		breakdown.PriceScore = 20
		texts = append(texts, fmt.Sprintf("Market decline (%.1f%%)", signals.PriceDropSeverity))
	}

	switch {
	case signals.SevereDropCount >= 15:
		breakdown.PriceScore += 10
		texts = append(texts, fmt.Sprintf("%d coins down >15%%", signals.SevereDropCount))
	case signals.SevereDropCount >= 10:
		breakdown.PriceScore += 5
		texts = append(texts, fmt.Sprintf("%d coins down >15%%", signals.SevereDropCount))
	}

	// Volume spike (up to 25)
	switch {
	case signals.VolumeSpike >= 3:
		breakdown.VolumeScore = 25
		texts = append(texts, fmt.Sprintf("Extreme volume (%.1fx normal)", signals.VolumeSpike))
	case signals.VolumeSpike >= 2:
		breakdown.VolumeScore = 15
		texts = append(texts, fmt.Sprintf("High volume (%.1fx normal)", signals.VolumeSpike))
	case signals.VolumeSpike >= 1.5:
		breakdown.VolumeScore = 10
		texts = append(texts, fmt.Sprintf("Elevated volume (%.1fx normal)", signals.VolumeSpike))
	}

	// Fear & greed (up to 25)
	switch {
	case signals.FearGreedLevel <= 10:
		breakdown.FearScore = 25
		texts = append(texts, fmt.Sprintf("Extreme fear (%d)", signals.FearGreedLevel))
	case signals.FearGreedLevel <= 25:
		breakdown.FearScore = 20
		texts = append(texts, fmt.Sprintf("High fear (%d)", signals.FearGreedLevel))
	case signals.FearGreedLevel <= 35:
		breakdown.FearScore = 10
		texts = append(texts, fmt.Sprintf("Moderate fear (%d)", signals.FearGreedLevel))
	}

	// BTC dominance shift (up to 10)
	switch {
	case signals.BTCDominanceChange >= 2:
		breakdown.DominanceScore = 10
		texts = append(texts, fmt.Sprintf("BTC dominance spike (+%.1f%%)", signals.BTCDominanceChange))
	case signals.BTCDominanceChange >= 1:
		breakdown.DominanceScore = 5
		texts = append(texts, fmt.Sprintf("BTC dominance rise (+%.1f%%)", signals.BTCDominanceChange))
	}

	total := breakdown.PriceScore + breakdown.VolumeScore + breakdown.FearScore + breakdown.DominanceScore
	if total > 100 {
		total = 100
	}

	return models.CapitulationResult{
		Score:     total,
		Level:     models.LevelForScore(total),
		Signals:   texts,
		Breakdown: breakdown,
	}
}

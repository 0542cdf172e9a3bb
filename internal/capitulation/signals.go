package capitulation

import (
	"fmt"

	"github.com/freealert/freealert/internal/models"
)

const (
	// rankedMinimum coins needed before the price-severity mean is trusted.
	rankedMinimum = 20
	// severeDropThreshold 24h change at or below this counts as a severe drop.
	severeDropThreshold = -15.0
)

// RankedMarkets wraps a coin list whose order is guaranteed to be market
// capitalization descending. The price-severity average reads the first 20
// entries, so feeding it an unranked list would silently skew the signal;
// the constructor makes the ranking contract explicit and rejects short lists.
type RankedMarkets struct {
	coins []models.MarketCoin
}

// NewRankedMarkets builds the top-N view. The caller must supply coins
// pre-ranked by market cap descending (the markets provider requests them
// that way). Fails when fewer than 20 coins are available.
func NewRankedMarkets(coins []models.MarketCoin) (RankedMarkets, error) {
	if len(coins) < rankedMinimum {
		return RankedMarkets{}, fmt.Errorf("%w: got %d ranked coins, need at least %d",
			models.ErrInsufficientData, len(coins), rankedMinimum)
	}
	return RankedMarkets{coins: coins}, nil
}

// Coins returns the ranked list.
func (r RankedMarkets) Coins() []models.MarketCoin { return r.coins }

// TotalVolume sums the 24h volume of every ranked coin. This aggregate, not
// the global-snapshot volume, is what the rolling baseline tracks.
func (r RankedMarkets) TotalVolume() float64 {
	var sum float64
	for _, c := range r.coins {
		sum += c.Volume24h
	}
	return sum
}

// ExtractSignals reduces one joined snapshot into the five scalar signals the
// scorer consumes.
//
// volumeSpike defaults to 1 when no baseline has been observed yet, and the
// dominance delta to 0 when there is no prior reading, so a fresh process
// starts neutral instead of trending.
func ExtractSignals(
	markets RankedMarkets,
	currentTotalVolume, historicalVolume float64,
	global models.GlobalSnapshot,
	sentiment models.SentimentReading,
	previousDominance float64,
) models.CapitulationSignals {
	severeDrops := 0
	for _, coin := range markets.Coins() {
		if coin.PriceChange24h <= severeDropThreshold {
			severeDrops++
		}
	}

	var sum float64
	for _, coin := range markets.Coins()[:rankedMinimum] {
		sum += coin.PriceChange24h
	}
	avgPriceChange := sum / rankedMinimum

	volumeRatio := 1.0
	if historicalVolume > 0 {
		volumeRatio = currentTotalVolume / historicalVolume
	}

	dominanceChange := 0.0
	if previousDominance > 0 {
		dominanceChange = global.BTCDominancePercent - previousDominance
	}

	return models.CapitulationSignals{
		PriceDropSeverity:  avgPriceChange,
		VolumeSpike:        volumeRatio,
		FearGreedLevel:     sentiment.Value,
		BTCDominanceChange: dominanceChange,
		SevereDropCount:    severeDrops,
	}
}

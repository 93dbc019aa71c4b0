package businessflow

import (
	"math"
	"time"

	"github.com/amirphl/countdown-contest/models"
)

// EvaluatePhase computes where c stands at now. A won campaign is terminal; otherwise
// the phase only moves forward as now advances: pending until countdown_end, revealed
// for claimWindow after that, expired from then on.
func EvaluatePhase(c *models.Campaign, now time.Time, claimWindow time.Duration) models.CampaignPhase {
	if c.HasWinner {
		return models.CampaignPhaseAlreadyWon
	}
	if now.Before(c.CountdownEnd) {
		return models.CampaignPhasePending
	}
	if now.Before(c.CountdownEnd.Add(claimWindow)) {
		return models.CampaignPhaseRevealed
	}
	return models.CampaignPhaseExpired
}

// PhaseFilter narrows cf to campaigns that EvaluatePhase would place in phase at now
func PhaseFilter(cf models.CampaignFilter, phase models.CampaignPhase, now time.Time, claimWindow time.Duration) models.CampaignFilter {
	won := phase == models.CampaignPhaseAlreadyWon
	cf.HasWinner = &won
	switch phase {
	case models.CampaignPhasePending:
		cf.CountdownEndsAfter = &now
	case models.CampaignPhaseRevealed:
		opened := now.Add(-claimWindow)
		cf.CountdownEndsAfter = &opened
		cf.CountdownEndsBy = &now
	case models.CampaignPhaseExpired:
		closed := now.Add(-claimWindow)
		cf.CountdownEndsBy = &closed
	}
	return cf
}

// IsRevealed reports whether the countdown of c has ended at now
func IsRevealed(c *models.Campaign, now time.Time) bool {
	return !now.Before(c.CountdownEnd)
}

// SecondsUntilReveal is the time left before c reveals, in whole seconds rounded up
func SecondsUntilReveal(c *models.Campaign, now time.Time) int64 {
	remaining := c.CountdownEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(math.Ceil(remaining.Seconds()))
}

package businessflow

import (
	"testing"
	"time"

	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/stretchr/testify/assert"
)

var revealAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluatePhase(t *testing.T) {
	window := 10 * time.Minute

	tests := []struct {
		name      string
		hasWinner bool
		now       time.Time
		expected  models.CampaignPhase
	}{
		{"well before reveal", false, revealAt.Add(-time.Hour), models.CampaignPhasePending},
		{"one nanosecond before reveal", false, revealAt.Add(-time.Nanosecond), models.CampaignPhasePending},
		{"exactly at reveal", false, revealAt, models.CampaignPhaseRevealed},
		{"inside claim window", false, revealAt.Add(5 * time.Minute), models.CampaignPhaseRevealed},
		{"window end is exclusive", false, revealAt.Add(window), models.CampaignPhaseExpired},
		{"long after window", false, revealAt.Add(24 * time.Hour), models.CampaignPhaseExpired},
		{"won before reveal", true, revealAt.Add(-time.Hour), models.CampaignPhaseAlreadyWon},
		{"won after window", true, revealAt.Add(time.Hour), models.CampaignPhaseAlreadyWon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Campaign{CountdownEnd: revealAt, HasWinner: tt.hasWinner, IsActive: utils.ToPtr(true)}
			assert.Equal(t, tt.expected, EvaluatePhase(c, tt.now, window))
		})
	}
}

func TestEvaluatePhaseIgnoresActiveFlag(t *testing.T) {
	c := &models.Campaign{CountdownEnd: revealAt, IsActive: utils.ToPtr(false)}
	assert.Equal(t, models.CampaignPhaseRevealed, EvaluatePhase(c, revealAt, time.Minute))
}

func TestEvaluatePhaseIsMonotonic(t *testing.T) {
	rank := map[models.CampaignPhase]int{
		models.CampaignPhasePending:  0,
		models.CampaignPhaseRevealed: 1,
		models.CampaignPhaseExpired:  2,
	}
	window := 3 * time.Minute
	c := &models.Campaign{CountdownEnd: revealAt}

	prev := -1
	for now := revealAt.Add(-5 * time.Minute); now.Before(revealAt.Add(10 * time.Minute)); now = now.Add(7 * time.Second) {
		phase := EvaluatePhase(c, now, window)
		assert.GreaterOrEqual(t, rank[phase], prev, "phase went backwards at %s", now)
		prev = rank[phase]
	}

	c.HasWinner = true
	for now := revealAt.Add(-5 * time.Minute); now.Before(revealAt.Add(10 * time.Minute)); now = now.Add(time.Minute) {
		assert.Equal(t, models.CampaignPhaseAlreadyWon, EvaluatePhase(c, now, window))
	}
}

func TestIsRevealed(t *testing.T) {
	c := &models.Campaign{CountdownEnd: revealAt}
	assert.False(t, IsRevealed(c, revealAt.Add(-time.Millisecond)))
	assert.True(t, IsRevealed(c, revealAt))
	assert.True(t, IsRevealed(c, revealAt.Add(time.Hour)))
}

func TestSecondsUntilReveal(t *testing.T) {
	c := &models.Campaign{CountdownEnd: revealAt}

	assert.Equal(t, int64(2700), SecondsUntilReveal(c, revealAt.Add(-45*time.Minute)))
	assert.Equal(t, int64(2), SecondsUntilReveal(c, revealAt.Add(-1200*time.Millisecond)))
	assert.Equal(t, int64(1), SecondsUntilReveal(c, revealAt.Add(-time.Nanosecond)))
	assert.Equal(t, int64(0), SecondsUntilReveal(c, revealAt))
	assert.Equal(t, int64(0), SecondsUntilReveal(c, revealAt.Add(time.Minute)))
}

package businessflow

import (
	"time"

	"github.com/amirphl/countdown-contest/models"
)

// SelectActiveCampaign picks the campaign offered to visitors at now. Only active,
// unwon campaigns whose countdown has not ended qualify. Among them the most recently
// created wins, with the higher id breaking equal creation times. A nil result means
// there is no active campaign.
func SelectActiveCampaign(campaigns []*models.Campaign, now time.Time) *models.Campaign {
	var selected *models.Campaign
	for _, c := range campaigns {
		if c == nil || !c.IsSelectableAt(now) {
			continue
		}
		if selected == nil || newerThan(c, selected) {
			selected = c
		}
	}
	return selected
}

func newerThan(a, b *models.Campaign) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

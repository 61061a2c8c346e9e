package session

import (
	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/model"
)

// Correction is a manual edit of a stored record. Nil fields are left as is.
type Correction struct {
	TotalPoints       *int
	CompletedSessions *int
	// Achievements replaces the stored set when non-nil.
	Achievements []achievement.ID
	// Reaward grants every achievement the resulting points qualify for.
	Reaward bool
}

// Apply returns p with the correction applied. Lowering points never
// removes achievements; only an explicit Achievements set does.
func (c Correction) Apply(p model.Progress) model.Progress {
	out := p.Clone()
	if c.TotalPoints != nil {
		out.TotalPoints = *c.TotalPoints
	}
	if c.CompletedSessions != nil {
		out.CompletedSessions = *c.CompletedSessions
	}
	if c.Achievements != nil {
		out.Achievements = achievement.Dedupe(c.Achievements)
	}
	if c.Reaward {
		out.Achievements, _ = achievement.Award(out.TotalPoints, out.Achievements)
	}
	return out
}

// Reset returns the zero-valued record for p's user.
func Reset(p model.Progress) model.Progress {
	return model.NewProgress(p.UserKey)
}

// Package session drives repetitions, sessions and awards for one user.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/japa/internal/achievement"
	"github.com/verte-zerg/japa/internal/model"
	"github.com/verte-zerg/japa/internal/scorer"
)

const (
	// RepetitionsPerSession is how many accepted repetitions complete a session.
	RepetitionsPerSession = 3
	// PointsPerSession is awarded for each completed session.
	PointsPerSession = 10
)

// Persister loads and saves progress records.
type Persister interface {
	Load(ctx context.Context, userKey string) (model.Progress, error)
	Save(ctx context.Context, p model.Progress) error
}

// Recorder stores the repetition log. Persisters may optionally implement it.
type Recorder interface {
	InsertRepetition(ctx context.Context, rep model.Repetition) (int64, error)
}

// Config wires a Controller.
type Config struct {
	UserKey   string
	Scorer    *scorer.Scorer
	Persister Persister
	// Now defaults to time.Now.
	Now func() time.Time
}

// Outcome reports what one input event changed.
type Outcome struct {
	Accuracy         int
	Suggestion       string
	Accepted         bool
	Count            int
	SessionCompleted bool
	Unlocked         []achievement.ID
	Repetition       *model.Repetition
	Warning          string
}

// Controller holds the in-memory session state for one user.
type Controller struct {
	userKey   string
	scorer    *scorer.Scorer
	persister Persister
	now       func() time.Time

	progress  model.Progress
	count     int
	localOnly bool

	startedAt  time.Time
	keystrokes int
}

// New loads the user's record and returns a Controller. A failed load keeps
// a zero-valued local record; the returned warning is non-empty in that case.
func New(ctx context.Context, cfg Config) (*Controller, string) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		userKey:   cfg.UserKey,
		scorer:    cfg.Scorer,
		persister: cfg.Persister,
		now:       now,
		progress:  model.NewProgress(cfg.UserKey),
	}
	if c.persister == nil {
		c.localOnly = true
		return c, ""
	}
	p, err := c.persister.Load(ctx, cfg.UserKey)
	if err != nil {
		c.localOnly = true
		return c, fmt.Sprintf("failed to load progress, practicing locally: %v", err)
	}
	p.UserKey = cfg.UserKey
	p.Achievements = achievement.Dedupe(p.Achievements)
	c.progress = p
	return c, ""
}

// Progress returns a copy of the current record.
func (c *Controller) Progress() model.Progress {
	return c.progress.Clone()
}

// Count returns accepted repetitions in the current session.
func (c *Controller) Count() int {
	return c.count
}

// LocalOnly reports whether progress is no longer being persisted.
func (c *Controller) LocalOnly() bool {
	return c.localOnly
}

// Scorer returns the scorer bound to this controller.
func (c *Controller) Scorer() *scorer.Scorer {
	return c.scorer
}

// Handle scores the current input. On a perfect score the repetition is
// accepted, and every third acceptance completes a session.
func (c *Controller) Handle(ctx context.Context, input string) Outcome {
	if c.startedAt.IsZero() && input != "" {
		c.startedAt = c.now()
	}
	c.keystrokes++

	res := c.scorer.Evaluate(input)
	out := Outcome{
		Accuracy:   res.Accuracy,
		Suggestion: res.Suggestion,
		Count:      c.count,
	}
	if !res.Accepted {
		return out
	}

	out.Accepted = true
	out.Repetition = c.finishRepetition(ctx, input, &out)
	c.count++
	if c.count < RepetitionsPerSession {
		out.Count = c.count
		out.Suggestion = c.scorer.Suggest("")
		return out
	}

	c.count = 0
	out.Count = 0
	out.SessionCompleted = true
	out.Suggestion = c.scorer.Suggest("")
	out.Unlocked = c.completeSession()
	if warning := c.persist(ctx); warning != "" {
		out.Warning = warning
	}
	return out
}

// Reset discards the partial session.
func (c *Controller) Reset() {
	c.count = 0
	c.startedAt = time.Time{}
	c.keystrokes = 0
}

func (c *Controller) completeSession() []achievement.ID {
	next := c.progress.Clone()
	next.CompletedSessions++
	next.TotalPoints += PointsPerSession
	var unlocked []achievement.ID
	next.Achievements, unlocked = achievement.Award(next.TotalPoints, next.Achievements)
	next.LastActive = c.now()
	c.progress = next
	return unlocked
}

// persist saves the record. It warns only when persistence is lost, never
// again once the controller is local-only.
func (c *Controller) persist(ctx context.Context) string {
	if c.localOnly {
		return ""
	}
	snapshot := c.progress.Clone()
	err := c.persister.Save(ctx, snapshot)
	if err != nil {
		err = c.persister.Save(ctx, snapshot)
	}
	if err != nil {
		c.localOnly = true
		return fmt.Sprintf("failed to save progress, continuing locally: %v", err)
	}
	return ""
}

func (c *Controller) finishRepetition(ctx context.Context, input string, out *Outcome) *model.Repetition {
	ended := c.now()
	started := c.startedAt
	if started.IsZero() {
		started = ended
	}
	rep := &model.Repetition{
		UserKey:    c.userKey,
		Variant:    c.scorer.Variant().String(),
		StartedAt:  started,
		EndedAt:    ended,
		Chars:      len([]rune(input)),
		Keystrokes: c.keystrokes,
		DurationMs: ended.Sub(started).Milliseconds(),
	}
	c.startedAt = time.Time{}
	c.keystrokes = 0

	if rec, ok := c.persister.(Recorder); ok && !c.localOnly {
		if _, err := rec.InsertRepetition(ctx, *rep); err != nil {
			out.Warning = fmt.Sprintf("failed to record repetition: %v", err)
		}
	}
	return rep
}

// Package achievement maps point thresholds to unlockable milestones.
package achievement

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ID identifies an achievement.
type ID int

const (
	FirstSteps ID = iota + 1
	Devoted
	Steadfast
	Disciplined
	Radiant
	Illumined
)

// Definition describes when an achievement unlocks.
type Definition struct {
	ID        ID
	Threshold int
	Name      string
	Icon      string
}

// Ordered ascending by threshold.
var definitions = []Definition{
	{ID: FirstSteps, Threshold: 10, Name: "First Steps", Icon: "🌱"},
	{ID: Devoted, Threshold: 50, Name: "Devoted", Icon: "🪔"},
	{ID: Steadfast, Threshold: 100, Name: "Steadfast", Icon: "🔥"},
	{ID: Disciplined, Threshold: 250, Name: "Disciplined", Icon: "📿"},
	{ID: Radiant, Threshold: 500, Name: "Radiant", Icon: "☀️"},
	{ID: Illumined, Threshold: 1000, Name: "Illumined", Icon: "🕉️"},
}

var slugs = map[ID]string{
	FirstSteps:  "first-steps",
	Devoted:     "devoted",
	Steadfast:   "steadfast",
	Disciplined: "disciplined",
	Radiant:     "radiant",
	Illumined:   "illumined",
}

// All returns every definition in ascending threshold order.
func All() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	return lo.Find(definitions, func(d Definition) bool { return d.ID == id })
}

func (id ID) String() string {
	if slug, ok := slugs[id]; ok {
		return slug
	}
	return fmt.Sprintf("achievement(%d)", int(id))
}

// Parse resolves a stored identifier or display name.
func Parse(s string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for id, slug := range slugs {
		if key == slug {
			return id, nil
		}
	}
	for _, d := range definitions {
		if key == strings.ToLower(d.Name) {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("unknown achievement %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	slug, ok := slugs[id]
	if !ok {
		return nil, fmt.Errorf("unknown achievement %d", int(id))
	}
	return []byte(slug), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Award adds every achievement whose threshold points has reached and that
// is not already held. It returns the updated set and the newly unlocked
// achievements. Calling it again with the result unlocks nothing.
func Award(points int, have []ID) (updated, unlocked []ID) {
	updated = Dedupe(have)
	for _, d := range definitions {
		if points < d.Threshold {
			break
		}
		if lo.Contains(updated, d.ID) {
			continue
		}
		updated = append(updated, d.ID)
		unlocked = append(unlocked, d.ID)
	}
	return updated, unlocked
}

// Dedupe drops repeated identifiers, keeping first occurrences.
func Dedupe(ids []ID) []ID {
	if len(ids) == 0 {
		return []ID{}
	}
	return lo.Uniq(ids)
}

// Next returns the lowest-threshold achievement not yet reached by points.
func Next(points int) (Definition, bool) {
	return lo.Find(definitions, func(d Definition) bool { return d.Threshold > points })
}

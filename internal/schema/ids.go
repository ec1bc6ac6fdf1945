package schema

import (
	"fmt"
	"time"
)

// idGenerator hands out "<kind>_<unix millis>" ids. Two ids requested within
// the same millisecond get a numeric suffix instead of colliding.
type idGenerator struct {
	now  func() time.Time
	used map[string]bool
}

func newIDGenerator(now func() time.Time) *idGenerator {
	if now == nil {
		now = time.Now
	}
	return &idGenerator{now: now, used: make(map[string]bool)}
}

func (g *idGenerator) reserve(id string) {
	if id != "" {
		g.used[id] = true
	}
}

func (g *idGenerator) next(kind string) string {
	id := fmt.Sprintf("%s_%d", kind, g.now().UnixMilli())
	if !g.used[id] {
		g.used[id] = true
		return id
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", id, n)
		if !g.used[candidate] {
			g.used[candidate] = true
			return candidate
		}
	}
}

package gamehandlers

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const dateLayout = "2006-01-02"

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// resolveDate accepts YYYY-MM-DD or a relative phrase such as "yesterday" or
// "last friday", evaluated in the game's timezone. Anything unrecognised is
// returned unchanged so the service can reject it.
func (h *GameHandlers) resolveDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, err := time.Parse(dateLayout, raw); err == nil {
		return raw
	}

	now := h.clock.Now().In(h.location)
	r, err := h.dates.Parse(strings.ToLower(raw), now)
	if err != nil || r == nil {
		return raw
	}
	return r.Time.In(h.location).Format(dateLayout)
}

package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// story
	"story.loaded": {},

	// game lifecycle
	"game.started": {},
	"game.ended":   {},

	// narrative flow
	"scene.entered":   {},
	"choice.made":     {},
	"choice.rejected": {},

	// player state
	"stat.changed": {},
	"item.added":   {},
	"item.removed": {},
	"flag.set":     {},
	"flag.cleared": {},

	// persistence
	"session.saved":   {},
	"session.loaded":  {},
	"session.deleted": {},
	"session.ended":   {},

	// system
	"system.startup":         {},
	"system.startup_restore": {},
	"system.shutdown":        {},
	"system.error":           {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}

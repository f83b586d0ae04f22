package game

import "fmt"

// ChoiceErrorKind distinguishes why a choice was rejected.
type ChoiceErrorKind string

const (
	ChoiceOutOfRange   ChoiceErrorKind = "out_of_range"
	ChoiceDisabled     ChoiceErrorKind = "disabled"
	ChoiceSessionEnded ChoiceErrorKind = "session_ended"
)

// ChoiceError reports a rejected choice. No state mutation occurs when a
// choice is rejected.
type ChoiceError struct {
	Kind  ChoiceErrorKind
	Scene string
	Index int
}

func (e *ChoiceError) Error() string {
	switch e.Kind {
	case ChoiceOutOfRange:
		return fmt.Sprintf("choice %d is not a visible choice in scene %q", e.Index, e.Scene)
	case ChoiceDisabled:
		return fmt.Sprintf("choice %d in scene %q is disabled", e.Index, e.Scene)
	case ChoiceSessionEnded:
		return fmt.Sprintf("session has ended at scene %q", e.Scene)
	}
	return fmt.Sprintf("choice rejected in scene %q", e.Scene)
}

// SceneMissingError reports a current or target scene id that is absent from
// the loaded story. Validation prevents this for loaded content, so hitting
// it at runtime is fatal for the session.
type SceneMissingError struct {
	Scene string
}

func (e *SceneMissingError) Error() string {
	return fmt.Sprintf("scene %q not present in story", e.Scene)
}

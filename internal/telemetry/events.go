package telemetry

import "time"

// Event names.
const (
	EventCommandExecuted = "command_executed"
	EventCascadeRun      = "cascade_run"
	EventDeepDive        = "deep_dive"
)

// Event is a named set of anonymous properties.
type Event struct {
	Name  string
	Props Properties
}

// CommandExecuted records a finished CLI command. errorKind is empty on
// success.
func CommandExecuted(command string, took time.Duration, errorKind string) Event {
	e := Event{Name: EventCommandExecuted, Props: Properties{
		"command":     command,
		"duration_ms": took.Milliseconds(),
		"success":     errorKind == "",
	}}
	if errorKind != "" {
		e.Props["error_kind"] = errorKind
	}
	return e
}

// CascadeRun records a completed pipeline run.
func CascadeRun(provider, mode string, seedCount, effectCount, leapCount, totalTokens int) Event {
	return Event{Name: EventCascadeRun, Props: Properties{
		"provider":     provider,
		"mode":         mode,
		"seed_count":   seedCount,
		"effect_count": effectCount,
		"leap_count":   leapCount,
		"tokens":       totalTokens,
	}}
}

// DeepDive records a completed deep dive.
func DeepDive(provider, level string, selectedCount, effectCount, totalTokens int) Event {
	return Event{Name: EventDeepDive, Props: Properties{
		"provider":       provider,
		"level":          level,
		"selected_count": selectedCount,
		"effect_count":   effectCount,
		"tokens":         totalTokens,
	}}
}

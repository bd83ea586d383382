package nav

// EventType identifies a controller transition.
type EventType int

const (
	// EventDestination means a new wander destination was assigned.
	EventDestination EventType = iota

	// EventArrived means the agent reached its destination and started waiting.
	EventArrived

	// EventWalkStarted means agent speed rose above the walk threshold.
	EventWalkStarted

	// EventWalkStopped means agent speed fell to or below the walk threshold.
	EventWalkStopped

	// EventSampleFailed means no navigable point was found for a destination.
	EventSampleFailed

	// EventStuck is the rising edge of a stuck episode.
	EventStuck

	// EventStuckPersisted means a stuck episode outlived its escape and was restarted.
	EventStuckPersisted

	// EventRecovered means the agent moved again or its path ended after being stuck.
	EventRecovered

	// EventEscapeAttemptFailed means one escape candidate was unusable.
	EventEscapeAttemptFailed

	// EventEscaped means an escape destination was accepted.
	EventEscaped

	// EventEscapeFailed means every escape attempt failed and wandering took over.
	EventEscapeFailed

	// EventHold means wandering was paused for an external action.
	EventHold
)

// String returns a human-readable event name.
func (t EventType) String() string {
	switch t {
	case EventDestination:
		return "destination"
	case EventArrived:
		return "arrived"
	case EventWalkStarted:
		return "walk_started"
	case EventWalkStopped:
		return "walk_stopped"
	case EventSampleFailed:
		return "sample_failed"
	case EventStuck:
		return "stuck"
	case EventStuckPersisted:
		return "stuck_persisted"
	case EventRecovered:
		return "recovered"
	case EventEscapeAttemptFailed:
		return "escape_attempt_failed"
	case EventEscaped:
		return "escaped"
	case EventEscapeFailed:
		return "escape_failed"
	case EventHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Event describes one transition. Fields that do not apply are zero.
type Event struct {
	Type     EventType
	Position Vec3    // Agent position when the event fired
	Target   Vec3    // Destination or escape target
	Attempt  int     // Escape attempt number (1-based)
	Wait     float64 // Wait duration drawn on arrival or hold
}

// Listener receives controller events synchronously from Tick.
type Listener func(Event)

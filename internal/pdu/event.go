package pdu

// EventLevel is the severity of an entry in the event feed.
type EventLevel string

// Event severities.
const (
	LevelInfo    EventLevel = "Info"
	LevelWarning EventLevel = "Warning"
	LevelAlarm   EventLevel = "Alarm"
)

// EventType identifies what an event is about.
type EventType string

// Event types reported by the management card. The bridge only acts on
// EventReceptacleOverCurrent; the rest are logged.
const (
	EventReceptacleOverCurrent EventType = "ReceptacleOverCurrent"
	EventReceptacleLowCurrent  EventType = "ReceptacleLowCurrent"
	EventBranchOverCurrent     EventType = "BranchOverCurrent"
	EventBranchLowCurrent      EventType = "BranchLowCurrent"
	EventBranchBreakerOpen     EventType = "BranchBreakerOpen"
	EventPDUOverCurrent        EventType = "PDUOverCurrent"
	EventPDULowVoltage         EventType = "PDULowVoltage"
	EventCommunicationFailure  EventType = "CommunicationFailure"
)

// Event is one active entry in the PDU event feed. Events are comparable
// with ==.
type Event struct {
	Level      EventLevel `json:"level"`
	Type       EventType  `json:"type"`
	PDU        uint8      `json:"pdu"`
	Branch     uint8      `json:"branch"`
	Receptacle uint8      `json:"receptacle"`
}

// Address returns the device address the event refers to.
func (e Event) Address() Address {
	return Address{PDU: e.PDU, Branch: e.Branch, Receptacle: e.Receptacle}
}

// ReceptacleCommand is an action that can be applied to a single outlet.
type ReceptacleCommand uint8

// Receptacle commands.
const (
	CommandEnable ReceptacleCommand = iota + 1
	CommandDisable
	CommandIdentify
)

// String returns the wire name of the command.
func (c ReceptacleCommand) String() string {
	switch c {
	case CommandEnable:
		return "enable"
	case CommandDisable:
		return "disable"
	case CommandIdentify:
		return "identify"
	default:
		return "unknown"
	}
}

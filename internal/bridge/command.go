package bridge

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// DefaultQueueSize is the default capacity of the command inbox.
const DefaultQueueSize = 256

var (
	controlTopicRe = regexp.MustCompile(`^.*?/pdu-(\d+)/branch-(\d+)/receptacle-(\d+)/control$`)
	setLabelRe     = regexp.MustCompile(`^set-label ([A-Za-z0-9_.-]+)$`)
)

// CommandKind is the decoded intent of a control message.
type CommandKind uint8

// Command kinds.
const (
	CommandEnable CommandKind = iota + 1
	CommandDisable
	CommandIdentify
	CommandSetLabel
)

// String returns the payload keyword for the kind.
func (k CommandKind) String() string {
	switch k {
	case CommandEnable:
		return "enable"
	case CommandDisable:
		return "disable"
	case CommandIdentify:
		return "identify"
	case CommandSetLabel:
		return "set-label"
	default:
		return "unknown"
	}
}

// Command is a decoded control message.
type Command struct {
	Address pdu.Address
	Kind    CommandKind
	Label   string
}

// ControlTopic returns the subscription pattern for control messages.
func ControlTopic(prefix string) string {
	return prefix + "/+/+/+/control"
}

// ParseCommand decodes a control topic and payload. It returns false for
// anything that is not a well-formed command.
func ParseCommand(topic string, payload []byte) (Command, bool) {
	m := controlTopicRe.FindStringSubmatch(topic)
	if m == nil {
		return Command{}, false
	}

	var levels [3]uint8
	for i := range levels {
		n, err := strconv.ParseUint(m[i+1], 10, 8)
		if err != nil {
			return Command{}, false
		}
		levels[i] = uint8(n)
	}
	cmd := Command{Address: pdu.Address{PDU: levels[0], Branch: levels[1], Receptacle: levels[2]}}

	body := string(payload)
	switch body {
	case "enable":
		cmd.Kind = CommandEnable
	case "disable":
		cmd.Kind = CommandDisable
	case "identify":
		cmd.Kind = CommandIdentify
	default:
		lm := setLabelRe.FindStringSubmatch(body)
		if lm == nil {
			return Command{}, false
		}
		cmd.Kind = CommandSetLabel
		cmd.Label = lm[1]
	}
	return cmd, true
}

// Inbox carries commands from the MQTT client's goroutine to the scheduler.
// After the first overflow it stays failed.
type Inbox struct {
	commands chan Command

	mu  sync.Mutex
	err error
}

// NewInbox creates an inbox holding up to size commands.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Inbox{commands: make(chan Command, size)}
}

// Handle decodes a control message and queues it. Malformed messages are
// ignored. It has the signature of an MQTT message handler.
func (i *Inbox) Handle(topic string, payload []byte) error {
	if err := i.Err(); err != nil {
		return err
	}

	cmd, ok := ParseCommand(topic, payload)
	if !ok {
		return nil
	}

	select {
	case i.commands <- cmd:
		return nil
	default:
		err := fmt.Errorf("%w: dropped %s for %s", ErrQueueFull, cmd.Kind, cmd.Address)
		i.mu.Lock()
		if i.err == nil {
			i.err = err
		}
		i.mu.Unlock()
		return err
	}
}

// TryReceive returns a queued command without blocking.
func (i *Inbox) TryReceive() (Command, bool) {
	select {
	case cmd := <-i.commands:
		return cmd, true
	default:
		return Command{}, false
	}
}

// Err returns the overflow error, if any.
func (i *Inbox) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

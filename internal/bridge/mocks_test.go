package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

var errMockDevice = errors.New("mock device failure")

type sentCommand struct {
	addr pdu.Address
	cmd  pdu.ReceptacleCommand
}

// mockDevice is a scriptable pdu.Client.
type mockDevice struct {
	mu sync.Mutex

	pdus        map[uint8]pdu.PDUInfo
	branches    map[pdu.Address]pdu.BranchInfo
	receptacles map[pdu.Address]pdu.ReceptacleInfo
	settings    map[pdu.Address]pdu.ReceptacleSettings
	events      []pdu.Event

	queryErr       error
	eventsErr      error
	settingsErr    error
	commandFails   int // fail this many ReceptacleCommand calls first
	setFails       int // fail this many SetReceptacleSettings calls first
	commands       []sentCommand
	settingsWrites []pdu.ReceptacleSettings
	eventPolls     int
	queries        []string
	calls          []string // every method name, in call order

	// onQuery runs inside ReceptacleInfo, e.g. to advance a fake clock.
	onQuery func()
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		pdus:        make(map[uint8]pdu.PDUInfo),
		branches:    make(map[pdu.Address]pdu.BranchInfo),
		receptacles: make(map[pdu.Address]pdu.ReceptacleInfo),
		settings:    make(map[pdu.Address]pdu.ReceptacleSettings),
	}
}

func (m *mockDevice) Receptacles(context.Context) ([]pdu.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []pdu.Address
	for addr := range m.receptacles {
		out = append(out, addr)
	}
	return out, nil
}

func (m *mockDevice) PDUInfo(_ context.Context, p uint8) (pdu.PDUInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "PDUInfo")
	m.queries = append(m.queries, pdu.Address{PDU: p}.String())
	if m.queryErr != nil {
		return pdu.PDUInfo{}, m.queryErr
	}
	return m.pdus[p], nil
}

func (m *mockDevice) BranchInfo(_ context.Context, p, branch uint8) (pdu.BranchInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "BranchInfo")
	addr := pdu.Address{PDU: p, Branch: branch}
	m.queries = append(m.queries, addr.String())
	if m.queryErr != nil {
		return pdu.BranchInfo{}, m.queryErr
	}
	return m.branches[addr], nil
}

func (m *mockDevice) ReceptacleInfo(_ context.Context, addr pdu.Address) (pdu.ReceptacleInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ReceptacleInfo")
	if m.onQuery != nil {
		m.onQuery()
	}
	m.queries = append(m.queries, addr.String())
	if m.queryErr != nil {
		return pdu.ReceptacleInfo{}, m.queryErr
	}
	return m.receptacles[addr], nil
}

func (m *mockDevice) ReceptacleCommand(_ context.Context, addr pdu.Address, cmd pdu.ReceptacleCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ReceptacleCommand")
	m.commands = append(m.commands, sentCommand{addr: addr, cmd: cmd})
	if m.commandFails > 0 {
		m.commandFails--
		return errMockDevice
	}
	return nil
}

func (m *mockDevice) ReceptacleSettings(_ context.Context, addr pdu.Address) (pdu.ReceptacleSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settingsErr != nil {
		return pdu.ReceptacleSettings{}, m.settingsErr
	}
	return m.settings[addr], nil
}

func (m *mockDevice) SetReceptacleSettings(_ context.Context, addr pdu.Address, s pdu.ReceptacleSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settingsWrites = append(m.settingsWrites, s)
	if m.setFails > 0 {
		m.setFails--
		return errMockDevice
	}
	m.settings[addr] = s
	return nil
}

func (m *mockDevice) Events(context.Context) ([]pdu.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Events")
	m.eventPolls++
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	out := make([]pdu.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *mockDevice) sent() []sentCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentCommand, len(m.commands))
	copy(out, m.commands)
	return out
}

func (m *mockDevice) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// recordingLogger keeps warning messages.
type recordingLogger struct {
	noopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

type published struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

// mockPublisher records every publish.
type mockPublisher struct {
	mu        sync.Mutex
	messages  []published
	err       error
	connected bool
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{connected: true}
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, published{topic: topic, payload: string(payload), qos: qos, retained: retained})
	return nil
}

func (m *mockPublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockPublisher) take() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.messages
	m.messages = nil
	return out
}

// mockNotifier counts supervisor notifications.
type mockNotifier struct {
	mu    sync.Mutex
	ready int
	alive int
}

func (m *mockNotifier) Ready() {
	m.mu.Lock()
	m.ready++
	m.mu.Unlock()
}

func (m *mockNotifier) Alive() {
	m.mu.Lock()
	m.alive++
	m.mu.Unlock()
}

func (m *mockNotifier) counts() (ready, alive int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready, m.alive
}

type mockJournal struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func (m *mockJournal) Record(_ context.Context, e JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

type point struct {
	measurement string
	tags        map[string]string
	fields      map[string]interface{}
}

type mockTelemetry struct {
	mu     sync.Mutex
	points []point
}

func (m *mockTelemetry) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, point{measurement: measurement, tags: tags, fields: fields})
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

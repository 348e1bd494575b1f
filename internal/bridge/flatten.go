package bridge

import (
	"math"
	"strconv"

	"github.com/nerrad567/mpx-bridge/internal/pdu"
)

// Topic groups, in publish order.
const (
	groupStatus   = "status"
	groupEvents   = "events"
	groupSettings = "settings"
	groupHardware = "hardware"
)

// snapshot accumulates the messages of one flattened record.
type snapshot struct {
	base string
	msgs []Message
}

func newSnapshot(addr pdu.Address, capacity int) *snapshot {
	return &snapshot{base: addr.Path(), msgs: make([]Message, 0, capacity)}
}

// add appends a field. Only status values are published without retain.
func (s *snapshot) add(group, field, payload string) {
	s.msgs = append(s.msgs, Message{
		Topic:    s.base + "/" + group + "/" + field,
		Payload:  payload,
		Retained: group != groupStatus,
	})
}

// fixed scales v and truncates it to an unsigned 32-bit integer, clamping
// out-of-range and NaN values.
func fixed(v, factor float64) string {
	x := v * factor
	switch {
	case math.IsNaN(x) || x <= 0:
		return "0"
	case x >= math.MaxUint32:
		return strconv.FormatUint(math.MaxUint32, 10)
	default:
		return strconv.FormatUint(uint64(uint32(x)), 10)
	}
}

func milli(v float64) string { return fixed(v, 1000) }
func deci(v float64) string  { return fixed(v, 10) }

func whole(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func scaled(v uint32, factor uint64) string {
	return strconv.FormatUint(uint64(v)*factor, 10)
}

func decimal(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// FlattenPDU maps a PDU record to messages under /pdu-<n>.
func FlattenPDU(addr pdu.Address, info pdu.PDUInfo) []Message {
	s := newSnapshot(addr.PDUAddress(), 64)

	st := info.Status
	s.add(groupStatus, "accumulated-energy", milli(st.AccumulatedEnergy))
	s.add(groupStatus, "input-power", milli(st.InputPower))
	s.add(groupStatus, "l1-voltage", milli(st.VoltageL1))
	s.add(groupStatus, "l2-voltage", milli(st.VoltageL2))
	s.add(groupStatus, "l3-voltage", milli(st.VoltageL3))
	s.add(groupStatus, "l1-current", milli(st.CurrentL1))
	s.add(groupStatus, "l2-current", milli(st.CurrentL2))
	s.add(groupStatus, "l3-current", milli(st.CurrentL3))
	s.add(groupStatus, "n-current", milli(st.CurrentN))
	s.add(groupStatus, "l1-current-available-to-alarm", milli(st.CurrentAvailableToAlarmL1))
	s.add(groupStatus, "l2-current-available-to-alarm", milli(st.CurrentAvailableToAlarmL2))
	s.add(groupStatus, "l3-current-available-to-alarm", milli(st.CurrentAvailableToAlarmL3))
	s.add(groupStatus, "l1-current-utilization", deci(st.CurrentUtilizationL1))
	s.add(groupStatus, "l2-current-utilization", deci(st.CurrentUtilizationL2))
	s.add(groupStatus, "l3-current-utilization", deci(st.CurrentUtilizationL3))
	s.add(groupStatus, "line-frequency", deci(st.LineFrequency))

	ev := info.Events
	s.add(groupEvents, "l1-low-voltage", string(ev.LowVoltageL1))
	s.add(groupEvents, "l2-low-voltage", string(ev.LowVoltageL2))
	s.add(groupEvents, "l3-low-voltage", string(ev.LowVoltageL3))
	s.add(groupEvents, "l1-over-current", string(ev.OverCurrentL1))
	s.add(groupEvents, "l2-over-current", string(ev.OverCurrentL2))
	s.add(groupEvents, "l3-over-current", string(ev.OverCurrentL3))
	s.add(groupEvents, "n-over-current", string(ev.OverCurrentN))
	s.add(groupEvents, "l1-low-current", string(ev.LowCurrentL1))
	s.add(groupEvents, "l2-low-current", string(ev.LowCurrentL2))
	s.add(groupEvents, "l3-low-current", string(ev.LowCurrentL3))
	s.add(groupEvents, "failure", string(ev.Failure))
	s.add(groupEvents, "communication-fail", string(ev.CommunicationFail))

	se := info.Settings
	s.add(groupSettings, "label", se.Label)
	s.add(groupSettings, "asset-tag-1", se.AssetTag1)
	s.add(groupSettings, "asset-tag-2", se.AssetTag2)
	s.add(groupSettings, "n-over-current-alarm-threshold", whole(se.NOverCurrentAlarmThreshold))
	s.add(groupSettings, "n-over-current-warning-threshold", whole(se.NOverCurrentWarningThreshold))
	s.add(groupSettings, "l1-low-current-alarm-threshold", whole(se.L1LowCurrentAlarmThreshold))
	s.add(groupSettings, "l1-over-current-alarm-threshold", whole(se.L1OverCurrentAlarmThreshold))
	s.add(groupSettings, "l1-over-current-warning-threshold", whole(se.L1OverCurrentWarnThreshold))
	s.add(groupSettings, "l2-low-current-alarm-threshold", whole(se.L2LowCurrentAlarmThreshold))
	s.add(groupSettings, "l2-over-current-alarm-threshold", whole(se.L2OverCurrentAlarmThreshold))
	s.add(groupSettings, "l2-over-current-warning-threshold", whole(se.L2OverCurrentWarnThreshold))
	s.add(groupSettings, "l3-low-current-alarm-threshold", whole(se.L3LowCurrentAlarmThreshold))
	s.add(groupSettings, "l3-over-current-alarm-threshold", whole(se.L3OverCurrentAlarmThreshold))
	s.add(groupSettings, "l3-over-current-warning-threshold", whole(se.L3OverCurrentWarnThreshold))

	hw := info.Hardware
	s.add(groupHardware, "pem-model", hw.PEMModel)
	s.add(groupHardware, "fw-version", hw.FirmwareVersion)
	s.add(groupHardware, "serial-number", hw.SerialNumber)
	s.add(groupHardware, "wiring-type", hw.WiringType)
	s.add(groupHardware, "rated-input-voltage", scaled(hw.RatedInputVoltage, 1000))
	s.add(groupHardware, "rated-input-current", scaled(hw.RatedInputCurrent, 1000))
	s.add(groupHardware, "rated-input-line-frequency", scaled(hw.RatedInputLineFrequency, 10))

	return s.msgs
}

// FlattenBranch maps a branch record to messages under /pdu-<n>/branch-<n>.
func FlattenBranch(addr pdu.Address, info pdu.BranchInfo) []Message {
	s := newSnapshot(addr.BranchAddress(), 28)

	st := info.Status
	s.add(groupStatus, "accumulated-energy", milli(st.AccumulatedEnergy))
	s.add(groupStatus, "voltage", milli(st.Voltage))
	s.add(groupStatus, "current", milli(st.Current))
	s.add(groupStatus, "current-available-to-alarm", milli(st.CurrentAvailableToAlarm))
	s.add(groupStatus, "current-utilization", deci(st.CurrentUtilization))
	s.add(groupStatus, "power", milli(st.Power))
	s.add(groupStatus, "apparent-power", milli(st.ApparentPower))
	s.add(groupStatus, "power-factor", decimal(st.PowerFactor))

	ev := info.Events
	s.add(groupEvents, "low-voltage", string(ev.LowVoltage))
	s.add(groupEvents, "over-current", string(ev.OverCurrent))
	s.add(groupEvents, "low-current", string(ev.LowCurrent))
	s.add(groupEvents, "failure", string(ev.Failure))
	s.add(groupEvents, "breaker-open", string(ev.BreakerOpen))

	se := info.Settings
	s.add(groupSettings, "label", se.Label)
	s.add(groupSettings, "asset-tag-1", se.AssetTag1)
	s.add(groupSettings, "asset-tag-2", se.AssetTag2)
	s.add(groupSettings, "over-current-alarm-threshold", whole(se.OverCurrentAlarmThreshold))
	s.add(groupSettings, "over-current-warning-threshold", whole(se.OverCurrentWarningThreshold))
	s.add(groupSettings, "low-current-alarm-threshold", whole(se.LowCurrentAlarmThreshold))

	hw := info.Hardware
	s.add(groupHardware, "brm-model", hw.BRMModel)
	s.add(groupHardware, "fw-version", hw.FirmwareVersion)
	s.add(groupHardware, "serial-number", hw.SerialNumber)
	s.add(groupHardware, "receptacle-type", hw.ReceptacleType)
	s.add(groupHardware, "capabilities", hw.Capabilities)
	s.add(groupHardware, "line-source", hw.LineSource)
	s.add(groupHardware, "rated-line-voltage", scaled(hw.RatedLineVoltage, 1000))
	s.add(groupHardware, "rated-line-current", scaled(hw.RatedLineCurrent, 1000))
	s.add(groupHardware, "rated-line-frequency", scaled(hw.RatedLineFrequency, 10))

	return s.msgs
}

// FlattenReceptacle maps a receptacle record to messages under its full path.
func FlattenReceptacle(addr pdu.Address, info pdu.ReceptacleInfo) []Message {
	s := newSnapshot(addr, 24)

	st := info.Status
	s.add(groupStatus, "accumulated-energy", milli(st.AccumulatedEnergy))
	s.add(groupStatus, "voltage", milli(st.Voltage))
	s.add(groupStatus, "current", milli(st.Current))
	s.add(groupStatus, "current-available-to-alarm", milli(st.CurrentAvailableToAlarm))
	s.add(groupStatus, "current-utilization", deci(st.CurrentUtilization))
	s.add(groupStatus, "power", milli(st.Power))
	s.add(groupStatus, "apparent-power", milli(st.ApparentPower))
	s.add(groupStatus, "power-factor", decimal(st.PowerFactor))
	s.add(groupStatus, "current-crest-factor", decimal(st.CurrentCrestFactor))

	ev := info.Events
	s.add(groupEvents, "over-current", string(ev.OverCurrent))
	s.add(groupEvents, "low-current", string(ev.LowCurrent))

	se := info.Settings
	s.add(groupSettings, "label", se.Label)
	s.add(groupSettings, "asset-tag-1", se.AssetTag1)
	s.add(groupSettings, "asset-tag-2", se.AssetTag2)
	s.add(groupSettings, "over-current-alarm-threshold", whole(se.OverCurrentAlarmThreshold))
	s.add(groupSettings, "over-current-warning-threshold", whole(se.OverCurrentWarningThreshold))
	s.add(groupSettings, "low-current-alarm-threshold", whole(se.LowCurrentAlarmThreshold))
	s.add(groupSettings, "power-state", onOff(se.PowerState))
	s.add(groupSettings, "power-control", onOff(se.PowerControl))
	s.add(groupSettings, "power-control-locked", onOff(se.PowerControlLocked))
	s.add(groupSettings, "power-on-delay", whole(se.PowerOnDelay))

	hw := info.Hardware
	s.add(groupHardware, "receptacle-type", hw.ReceptacleType)
	s.add(groupHardware, "line-source", hw.LineSource)
	s.add(groupHardware, "capabilities", hw.Capabilities)

	return s.msgs
}

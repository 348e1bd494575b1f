package pdu

// Condition is the state of a single event flag in an info record.
type Condition string

// Event flag states reported by the management card.
const (
	ConditionNormal  Condition = "Normal"
	ConditionActive  Condition = "Active"
	ConditionUnknown Condition = "Unknown"
)

// PDUInfo is the full record for a power entry module.
type PDUInfo struct {
	Status   PDUStatus   `json:"status"`
	Events   PDUEvents   `json:"events"`
	Settings PDUSettings `json:"settings"`
	Hardware PDUHardware `json:"hardware"`
}

// PDUStatus holds live PDU measurements. Energy is in kWh, power in kW,
// voltages in V, currents in A, utilisation in percent, frequency in Hz.
type PDUStatus struct {
	AccumulatedEnergy         float64 `json:"accumulated_energy"`
	InputPower                float64 `json:"input_power"`
	VoltageL1                 float64 `json:"voltage_l1"`
	VoltageL2                 float64 `json:"voltage_l2"`
	VoltageL3                 float64 `json:"voltage_l3"`
	CurrentL1                 float64 `json:"current_l1"`
	CurrentL2                 float64 `json:"current_l2"`
	CurrentL3                 float64 `json:"current_l3"`
	CurrentN                  float64 `json:"current_n"`
	CurrentAvailableToAlarmL1 float64 `json:"current_available_to_alarm_l1"`
	CurrentAvailableToAlarmL2 float64 `json:"current_available_to_alarm_l2"`
	CurrentAvailableToAlarmL3 float64 `json:"current_available_to_alarm_l3"`
	CurrentUtilizationL1      float64 `json:"current_utilization_l1"`
	CurrentUtilizationL2      float64 `json:"current_utilization_l2"`
	CurrentUtilizationL3      float64 `json:"current_utilization_l3"`
	LineFrequency             float64 `json:"line_frequency"`
}

// PDUEvents holds the PDU's event flags.
type PDUEvents struct {
	LowVoltageL1      Condition `json:"low_voltage_l1"`
	LowVoltageL2      Condition `json:"low_voltage_l2"`
	LowVoltageL3      Condition `json:"low_voltage_l3"`
	OverCurrentL1     Condition `json:"over_current_l1"`
	OverCurrentL2     Condition `json:"over_current_l2"`
	OverCurrentL3     Condition `json:"over_current_l3"`
	OverCurrentN      Condition `json:"over_current_n"`
	LowCurrentL1      Condition `json:"low_current_l1"`
	LowCurrentL2      Condition `json:"low_current_l2"`
	LowCurrentL3      Condition `json:"low_current_l3"`
	Failure           Condition `json:"failure"`
	CommunicationFail Condition `json:"communication_fail"`
}

// PDUSettings holds the PDU's configurable thresholds and labels.
// Thresholds are percentages of rated current.
type PDUSettings struct {
	Label                        string `json:"label"`
	AssetTag1                    string `json:"asset_tag_1"`
	AssetTag2                    string `json:"asset_tag_2"`
	NOverCurrentAlarmThreshold   uint32 `json:"n_over_current_alarm_threshold"`
	NOverCurrentWarningThreshold uint32 `json:"n_over_current_warning_threshold"`
	L1LowCurrentAlarmThreshold   uint32 `json:"l1_low_current_alarm_threshold"`
	L1OverCurrentAlarmThreshold  uint32 `json:"l1_over_current_alarm_threshold"`
	L1OverCurrentWarnThreshold   uint32 `json:"l1_over_current_warning_threshold"`
	L2LowCurrentAlarmThreshold   uint32 `json:"l2_low_current_alarm_threshold"`
	L2OverCurrentAlarmThreshold  uint32 `json:"l2_over_current_alarm_threshold"`
	L2OverCurrentWarnThreshold   uint32 `json:"l2_over_current_warning_threshold"`
	L3LowCurrentAlarmThreshold   uint32 `json:"l3_low_current_alarm_threshold"`
	L3OverCurrentAlarmThreshold  uint32 `json:"l3_over_current_alarm_threshold"`
	L3OverCurrentWarnThreshold   uint32 `json:"l3_over_current_warning_threshold"`
}

// PDUHardware describes the power entry module.
type PDUHardware struct {
	PEMModel                string `json:"pem_model"`
	FirmwareVersion         string `json:"fw_version"`
	SerialNumber            string `json:"serial_number"`
	WiringType              string `json:"wiring_type"`
	RatedInputVoltage       uint32 `json:"rated_input_voltage"`
	RatedInputCurrent       uint32 `json:"rated_input_current"`
	RatedInputLineFrequency uint32 `json:"rated_input_line_frequency"`
}

// BranchInfo is the full record for a branch receptacle module.
type BranchInfo struct {
	Status   BranchStatus   `json:"status"`
	Events   BranchEvents   `json:"events"`
	Settings BranchSettings `json:"settings"`
	Hardware BranchHardware `json:"hardware"`
}

// BranchStatus holds live branch measurements.
type BranchStatus struct {
	AccumulatedEnergy       float64 `json:"accumulated_energy"`
	Voltage                 float64 `json:"voltage"`
	Current                 float64 `json:"current"`
	CurrentAvailableToAlarm float64 `json:"current_available_to_alarm"`
	CurrentUtilization      float64 `json:"current_utilization"`
	Power                   float64 `json:"power"`
	ApparentPower           float64 `json:"apparent_power"`
	PowerFactor             float64 `json:"power_factor"`
}

// BranchEvents holds the branch event flags.
type BranchEvents struct {
	LowVoltage  Condition `json:"low_voltage"`
	OverCurrent Condition `json:"over_current"`
	LowCurrent  Condition `json:"low_current"`
	Failure     Condition `json:"failure"`
	BreakerOpen Condition `json:"breaker_open"`
}

// BranchSettings holds the branch labels and thresholds.
type BranchSettings struct {
	Label                       string `json:"label"`
	AssetTag1                   string `json:"asset_tag_1"`
	AssetTag2                   string `json:"asset_tag_2"`
	OverCurrentAlarmThreshold   uint32 `json:"over_current_alarm_threshold"`
	OverCurrentWarningThreshold uint32 `json:"over_current_warning_threshold"`
	LowCurrentAlarmThreshold    uint32 `json:"low_current_alarm_threshold"`
}

// BranchHardware describes the branch receptacle module.
type BranchHardware struct {
	BRMModel           string `json:"brm_model"`
	FirmwareVersion    string `json:"fw_version"`
	SerialNumber       string `json:"serial_number"`
	ReceptacleType     string `json:"receptacle_type"`
	Capabilities       string `json:"capabilities"`
	LineSource         string `json:"line_source"`
	RatedLineVoltage   uint32 `json:"rated_line_voltage"`
	RatedLineCurrent   uint32 `json:"rated_line_current"`
	RatedLineFrequency uint32 `json:"rated_line_frequency"`
}

// ReceptacleInfo is the full record for a single outlet.
type ReceptacleInfo struct {
	Status   ReceptacleStatus   `json:"status"`
	Events   ReceptacleEvents   `json:"events"`
	Settings ReceptacleSettings `json:"settings"`
	Hardware ReceptacleHardware `json:"hardware"`
}

// ReceptacleStatus holds live outlet measurements.
type ReceptacleStatus struct {
	AccumulatedEnergy       float64 `json:"accumulated_energy"`
	Voltage                 float64 `json:"voltage"`
	Current                 float64 `json:"current"`
	CurrentAvailableToAlarm float64 `json:"current_available_to_alarm"`
	CurrentUtilization      float64 `json:"current_utilization"`
	Power                   float64 `json:"power"`
	ApparentPower           float64 `json:"apparent_power"`
	PowerFactor             float64 `json:"power_factor"`
	CurrentCrestFactor      float64 `json:"current_crest_factor"`
}

// ReceptacleEvents holds the outlet event flags.
type ReceptacleEvents struct {
	OverCurrent Condition `json:"over_current"`
	LowCurrent  Condition `json:"low_current"`
}

// ReceptacleSettings is both the settings section of ReceptacleInfo and the
// payload accepted by Client.SetReceptacleSettings.
type ReceptacleSettings struct {
	Label                       string `json:"label"`
	AssetTag1                   string `json:"asset_tag_1"`
	AssetTag2                   string `json:"asset_tag_2"`
	OverCurrentAlarmThreshold   uint32 `json:"over_current_alarm_threshold"`
	OverCurrentWarningThreshold uint32 `json:"over_current_warning_threshold"`
	LowCurrentAlarmThreshold    uint32 `json:"low_current_alarm_threshold"`
	PowerState                  bool   `json:"power_state"`
	PowerControl                bool   `json:"power_control"`
	PowerControlLocked          bool   `json:"power_control_locked"`
	PowerOnDelay                uint32 `json:"power_on_delay"`
}

// ReceptacleHardware describes the outlet.
type ReceptacleHardware struct {
	ReceptacleType string `json:"receptacle_type"`
	LineSource     string `json:"line_source"`
	Capabilities   string `json:"capabilities"`
}

package gamecontrol

const (
	NumAxes    = 6
	NumButtons = 32

	maxAxis   = NumAxes - 1
	maxButton = NumButtons - 1
)

// Axis indices (SDL GameController order).
const (
	AxisLeftX = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisTriggerLeft
	AxisTriggerRight
)

// Button indices (SDL GameController order).
const (
	ButtonA = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonBack
	ButtonGuide
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
	ButtonMisc1
	ButtonPaddle1
	ButtonPaddle2
	ButtonPaddle3
	ButtonPaddle4
	ButtonTouchpad
)

// Agent control bitmasks as sent in the avatar-control protocol.
const (
	AgentControlAtPos uint32 = 1 << iota
	AgentControlAtNeg
	AgentControlLeftPos
	AgentControlLeftNeg
	AgentControlUpPos
	AgentControlUpNeg
	AgentControlPitchPos
	AgentControlPitchNeg
	AgentControlYawPos
	AgentControlYawNeg
	AgentControlFastAt
	AgentControlFastLeft
	AgentControlFastUp
	AgentControlFly
	AgentControlStop
	AgentControlFinishAnim
	AgentControlStandUp
	AgentControlSitOnGround
	AgentControlMouselook
	AgentControlNudgeAtPos
	AgentControlNudgeAtNeg
	AgentControlNudgeLeftPos
	AgentControlNudgeLeftNeg
	AgentControlNudgeUpPos
	AgentControlNudgeUpNeg
	AgentControlTurnLeft
	AgentControlTurnRight
	AgentControlAway
	AgentControlLButtonDown
	AgentControlLButtonUp
	AgentControlMLLButtonDown
	AgentControlMLLButtonUp
)

// externalBitsOfInterest are the agent bits that can be translated back into
// controller state. Other bits depend on avatar state (sitting, flying...)
// and are not translated yet.
const externalBitsOfInterest = AgentControlAtPos | AgentControlAtNeg |
	AgentControlLeftPos | AgentControlLeftNeg |
	AgentControlUpPos | AgentControlUpNeg |
	AgentControlYawPos | AgentControlYawNeg |
	AgentControlPitchPos | AgentControlPitchNeg |
	AgentControlStop |
	AgentControlFastAt |
	AgentControlFastLeft |
	AgentControlFastUp

// axisThreshold is the ON/OFF boundary used when turning analog axes into
// action flags.
const axisThreshold = 32768 / 8

// defaultActionMasks maps every signed or binary action name to the agent
// control bits it drives.
func defaultActionMasks() map[string]uint32 {
	return map[string]uint32{
		"push+":  AgentControlAtPos | AgentControlFastAt,
		"push-":  AgentControlAtNeg | AgentControlFastAt,
		"slide+": AgentControlLeftPos | AgentControlFastLeft,
		"slide-": AgentControlLeftNeg | AgentControlFastLeft,
		"jump+":  AgentControlUpPos | AgentControlFastUp,
		"jump-":  AgentControlUpNeg | AgentControlFastUp,
		"turn+":  AgentControlYawPos,
		"turn-":  AgentControlYawNeg,
		"look+":  AgentControlPitchPos,
		"look-":  AgentControlPitchNeg,
		"stop":   AgentControlStop,
		// The toggles borrow bits that are only used locally.
		"toggle_run":    AgentControlNudgeAtPos,
		"toggle_fly":    AgentControlFly,
		"toggle_flycam": AgentControlNudgeAtNeg,
	}
}

package device

// Replies sent back to the command sender.
const (
	ReplyUnknownCommand    = "UNKNOWN_COMMAND"
	ReplyInvalidArgument   = "INVALID_ARGUMENT"
	ReplyPWMOn             = "PWM_ON"
	ReplyPWMOff            = "PWM_OFF"
	ReplyFreqChanged       = "FREQ_CHANGED"
	ReplyDutyCyclesChanged = "DUTY_CYCLES_CHANGED"
	ReplyInvalidFrequency  = "INVALID_FREQUENCY"
	ReplyInvalidDutyCycle  = "INVALID_DUTY_CYCLE"
	ReplyStatus            = "STATUS_RESP"
)

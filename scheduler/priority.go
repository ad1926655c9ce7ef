package scheduler

import (
	"math"
	"time"
)

// Priority orders callbacks. Lower values run first.
type Priority uint8

const (
	NoPriority Priority = iota
	ImmediatePriority
	UserBlockingPriority
	NormalPriority
	LowPriority
	IdlePriority
)

const (
	immediateTimeout    = -time.Millisecond
	userBlockingTimeout = 250 * time.Millisecond
	normalTimeout       = 5 * time.Second
	lowTimeout          = 10 * time.Second
	idleTimeout         = time.Duration(math.MaxInt64 / 2)
)

func (p Priority) String() string {
	switch p {
	case NoPriority:
		return "none"
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	default:
		return "unknown"
	}
}

// Timeout is how long a callback may be starved before it runs without
// yielding.
func (p Priority) Timeout() time.Duration {
	switch p {
	case ImmediatePriority:
		return immediateTimeout
	case UserBlockingPriority:
		return userBlockingTimeout
	case LowPriority:
		return lowTimeout
	case IdlePriority:
		return idleTimeout
	default:
		return normalTimeout
	}
}

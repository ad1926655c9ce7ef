package reconciler

import (
	"strings"

	"github.com/delaneyj/fiberparty/scheduler"
)

// Lane is a priority class for pending work. A Lane value with more than one
// bit set is a set of lanes; lower bits are more urgent.
type Lane uint32

const (
	NoLane Lane = 0
	SyncLane Lane = 1 << (iota - 1)
	InputContinuousLane
	DefaultLane
	TransitionLane
	IdleLane
)

const NoLanes = NoLane

var laneNames = [...]struct {
	lane Lane
	name string
}{
	{SyncLane, "sync"},
	{InputContinuousLane, "input"},
	{DefaultLane, "default"},
	{TransitionLane, "transition"},
	{IdleLane, "idle"},
}

func (l Lane) String() string {
	if l == NoLane {
		return "none"
	}
	var names []string
	for _, ln := range laneNames {
		if l&ln.lane != 0 {
			names = append(names, ln.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}

// ParseLane maps a lane name back to its Lane.
func ParseLane(name string) (Lane, bool) {
	for _, ln := range laneNames {
		if ln.name == name {
			return ln.lane, true
		}
	}
	return NoLane, false
}

func MergeLanes(a, b Lane) Lane { return a | b }

func RemoveLanes(set, subset Lane) Lane { return set &^ subset }

func IncludesSomeLane(a, b Lane) bool { return a&b != NoLane }

// IsSubsetOfLanes reports whether every lane of subset is in set. NoLane is a
// subset of everything.
func IsSubsetOfLanes(set, subset Lane) bool { return set&subset == subset }

// HighestPriorityLane isolates the lowest set bit.
func HighestPriorityLane(lanes Lane) Lane { return lanes & -lanes }

// LaneToPriority maps the most urgent lane of lanes onto a scheduler priority.
func LaneToPriority(lanes Lane) scheduler.Priority {
	switch HighestPriorityLane(lanes) {
	case SyncLane:
		return scheduler.ImmediatePriority
	case InputContinuousLane:
		return scheduler.UserBlockingPriority
	case DefaultLane:
		return scheduler.NormalPriority
	case TransitionLane:
		return scheduler.LowPriority
	case IdleLane:
		return scheduler.IdlePriority
	default:
		return scheduler.NoPriority
	}
}

// laneBook is the per-root lane bookkeeping.
type laneBook struct {
	pendingLanes   Lane
	suspendedLanes Lane
	pingedLanes    Lane
}

// markUpdated records new work. Any non idle update may unblock a suspended
// lane, so suspended and pinged are cleared.
func (b *laneBook) markUpdated(lane Lane) {
	b.pendingLanes |= lane
	if lane != IdleLane {
		b.suspendedLanes = NoLanes
		b.pingedLanes = NoLanes
	}
}

func (b *laneBook) markFinished(lane Lane) {
	b.pendingLanes &^= lane
	b.suspendedLanes &^= lane
	b.pingedLanes &^= lane
}

func (b *laneBook) markSuspended(lane Lane) {
	b.suspendedLanes |= lane
	b.pingedLanes &^= lane
}

func (b *laneBook) markPinged(lane Lane) {
	b.pendingLanes |= lane
	b.pingedLanes |= lane
}

// nextLane picks the most urgent pending lane that is not suspended, falling
// back to a suspended lane that has been pinged.
func (b *laneBook) nextLane() Lane {
	if b.pendingLanes == NoLanes {
		return NoLane
	}
	if nonSuspended := b.pendingLanes &^ b.suspendedLanes; nonSuspended != NoLanes {
		return HighestPriorityLane(nonSuspended)
	}
	return HighestPriorityLane(b.pendingLanes & b.pingedLanes)
}

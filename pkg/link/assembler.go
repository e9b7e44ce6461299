package link

import "time"

// Defaults of Assembler.
const (
	DefaultInterByteTimeout = 50 * time.Millisecond
	DefaultCapacity         = 64
)

// TimerAction tells the driver of an Assembler what to do with its timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// AssemblerState is the state of an Assembler.
type AssemblerState int

const (
	// StateIdle means no bytes are buffered and no deadline is armed.
	StateIdle AssemblerState = iota
	// StateAccumulating means bytes are buffered and the deadline is armed.
	StateAccumulating
)

// String implements fmt.Stringer.
func (s AssemblerState) String() string {
	if s == StateAccumulating {
		return "accumulating"
	}
	return "idle"
}

// FrameFunc receives a completed run of bytes. The slice is only valid
// during the call.
type FrameFunc func(run []byte)

// Assembler collects bytes until the inter-byte deadline expires.
// It is not safe for concurrent use; a single loop drives it with the
// current time.
type Assembler struct {
	Timeout time.Duration
	OnFrame FrameFunc

	buf      []byte
	deadline time.Time
	dropped  int
}

// NewAssembler creates an Assembler with a fixed capacity buffer.
func NewAssembler(capacity int, timeout time.Duration, onFrame FrameFunc) *Assembler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if timeout <= 0 {
		timeout = DefaultInterByteTimeout
	}
	return &Assembler{
		Timeout: timeout,
		OnFrame: onFrame,
		buf:     make([]byte, 0, capacity),
	}
}

// State gets the current state.
func (a *Assembler) State() AssemblerState {
	if len(a.buf) > 0 {
		return StateAccumulating
	}
	return StateIdle
}

// Deadline returns the armed deadline, zero when idle.
func (a *Assembler) Deadline() time.Time {
	if len(a.buf) == 0 {
		return time.Time{}
	}
	return a.deadline
}

// Buffered returns the number of bytes in the current run.
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// Dropped returns the total number of bytes discarded for exceeding capacity.
func (a *Assembler) Dropped() int {
	return a.dropped
}

// Feed appends bytes received at now. A run whose deadline already passed
// is completed first, so a late caller never merges two runs.
func (a *Assembler) Feed(now time.Time, p ...byte) TimerAction {
	if len(p) == 0 {
		return a.Tick(now)
	}
	a.Tick(now)
	for _, b := range p {
		if len(a.buf) < cap(a.buf) {
			a.buf = append(a.buf, b)
		} else {
			a.dropped++
		}
	}
	a.deadline = now.Add(a.Timeout)
	return TimerRestart
}

// Tick completes the current run if its deadline has been reached.
func (a *Assembler) Tick(now time.Time) TimerAction {
	if len(a.buf) == 0 {
		return TimerNoChange
	}
	if now.Before(a.deadline) {
		return TimerNoChange
	}
	if fn := a.OnFrame; fn != nil {
		fn(a.buf)
	}
	a.buf = a.buf[:0]
	return TimerStop
}

// Reset discards buffered bytes without completing the run.
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
}

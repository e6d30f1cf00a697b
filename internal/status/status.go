// ABOUTME: Fetch lifecycle states shared by the session and catalog stores
// ABOUTME: Each remote operation owns one Op slot: Idle -> Loading -> Ready or Error

package status

// State is the lifecycle phase of one fetch operation.
type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Ready   State = "ready"
	Error   State = "error"
)

// Op is the status slot for a single operation kind. Giving every fetch kind
// its own slot keeps a list load from stomping the error state of an
// in-flight detail load on the same store. The zero value is not Idle;
// constructors must seed their slots with NewOp.
type Op struct {
	State   State
	Message string
}

// NewOp returns an Idle slot.
func NewOp() Op {
	return Op{State: Idle}
}

// Start marks the operation in flight and clears any previous error.
func (o *Op) Start() {
	o.State = Loading
	o.Message = ""
}

// Succeed marks the operation complete.
func (o *Op) Succeed() {
	o.State = Ready
	o.Message = ""
}

// Fail records the human-readable message views render as "Error: {message}".
func (o *Op) Fail(msg string) {
	o.State = Error
	o.Message = msg
}

// Reset returns the slot to Idle.
func (o *Op) Reset() {
	o.State = Idle
	o.Message = ""
}

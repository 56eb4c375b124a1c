package simcir

// EventKind identifies a circuit notification.
//
type EventKind int

// Notification kinds.
//
const (
	EventValueChanged  EventKind = iota // Node value changed (or was forced)
	EventInputsChanged                  // Device behavior is about to re-evaluate its inputs
	EventLabelChanged                   // Device label changed
	EventDeviceAdded                    // Device entered the circuit
	EventDeviceRemoved                  // Device left the circuit
	EventConnected                      // Node (an input) was connected to a driver
	EventDisconnected                   // Node (an input) lost its driver
	EventLoopDetected                   // A cascade was aborted, Err holds the *LoopError
)

var eventNames = [...]string{
	EventValueChanged:  "valueChanged",
	EventInputsChanged: "inputsChanged",
	EventLabelChanged:  "deviceLabelChange",
	EventDeviceAdded:   "deviceAdd",
	EventDeviceRemoved: "deviceRemove",
	EventConnected:     "connect",
	EventDisconnected:  "disconnect",
	EventLoopDetected:  "loopDetected",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// An Event is a notification sent to circuit listeners. Node is nil for
// device level events.
//
type Event struct {
	Kind   EventKind
	Device *Device
	Node   *Node
	Label  string // previous label for EventLabelChanged
	Err    error
}

// A Listener receives circuit notifications. Listeners are called
// synchronously while the circuit is locked: they must not call back into
// Circuit methods but may read device and node state.
//
type Listener func(e Event)

type listeners struct {
	next int
	m    map[int]Listener
	ids  []int // subscription order
}

func (ls *listeners) add(l Listener) func() {
	if ls.m == nil {
		ls.m = make(map[int]Listener)
	}
	id := ls.next
	ls.next++
	ls.m[id] = l
	ls.ids = append(ls.ids, id)
	return func() {
		delete(ls.m, id)
		for i, v := range ls.ids {
			if v == id {
				ls.ids = append(ls.ids[:i], ls.ids[i+1:]...)
				break
			}
		}
	}
}

func (ls *listeners) emit(e Event) {
	for _, id := range ls.ids {
		if l := ls.m[id]; l != nil {
			l(e)
		}
	}
}

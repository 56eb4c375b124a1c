package simcir

// NodeKind tells input nodes from output nodes.
//
type NodeKind int

// Node kinds.
//
const (
	Input NodeKind = iota
	Output
)

func (k NodeKind) String() string {
	if k == Input {
		return "in"
	}
	return "out"
}

// handle identifies a device in its network arena. Handles are never reused.
type handle int

const noHandle handle = -1

// portRef is a weak reference to a node: the device handle and the port index.
// The node kind is implied by the side holding the reference.
type portRef struct {
	h handle
	i int
}

// A Node is an input or output terminal of a device.
//
// An input node is driven by at most one output node. An output node drives any
// number of input nodes, in connection order. Both sides of a connection are
// always updated together.
//
type Node struct {
	kind        NodeKind
	index       int
	owner       handle
	net         *network
	label       string
	description string
	value       Value

	// input nodes
	driver portRef
	driven bool

	// output nodes
	targets []portRef
}

// Kind returns the node kind.
//
func (n *Node) Kind() NodeKind { return n.kind }

// Index returns the node index in its device's inputs or outputs.
//
func (n *Node) Index() int { return n.index }

// Label returns the node label (may be empty).
//
func (n *Node) Label() string { return n.label }

// Description returns the node description (may be empty).
//
func (n *Node) Description() string { return n.description }

// Value returns the current signal value.
//
func (n *Node) Value() Value { return n.value }

// IsHigh is a shorthand for IsHigh(n.Value()).
//
func (n *Node) IsHigh() bool { return n.value != nil }

// Device returns the device owning n, or nil if that device has been removed.
//
func (n *Node) Device() *Device { return n.net.device(n.owner) }

// Path returns the port path of n ("<deviceId>.<in|out><index>").
//
func (n *Node) Path() string {
	d := n.Device()
	if d == nil {
		return ""
	}
	return formatPath(d.id, n.kind, n.index)
}

// Driver returns the output node driving an input node, or nil.
//
func (n *Node) Driver() *Node {
	if n.kind != Input || !n.driven {
		return nil
	}
	return n.net.node(n.driver, Output)
}

// Targets returns the input nodes driven by an output node, in connection
// order.
//
func (n *Node) Targets() []*Node {
	if n.kind != Output {
		return nil
	}
	ns := make([]*Node, 0, len(n.targets))
	for _, r := range n.targets {
		if t := n.net.node(r, Input); t != nil {
			ns = append(ns, t)
		}
	}
	return ns
}

// IsConnected returns true if an input node has a driver or if an output node
// drives at least one input.
//
func (n *Node) IsConnected() bool {
	if n.kind == Input {
		return n.driven
	}
	return len(n.targets) > 0
}

// SetValue sets the node value and propagates the change.
//
// When called from a device behavior, propagation is queued and happens once
// the behavior returns. Otherwise the cascade runs to completion before
// SetValue returns. Callers outside of behaviors that share the circuit with
// timer driven devices should use Circuit.Set or Circuit.Do instead.
//
// The returned error is a *LoopError if the cascade was aborted. It is always
// nil when called from a behavior.
//
func (n *Node) SetValue(v Value) error {
	n.net.set(n, v, false)
	return n.net.flush()
}

// Disconnect disconnects an input node from its driver, if any. It is meant
// for behaviors that manage their own connections; other callers should use
// Circuit.Disconnect. Errors are reported as in SetValue.
//
func (n *Node) Disconnect() error {
	drv := n.Driver()
	if drv == nil {
		return nil
	}
	if err := n.net.disconnect(drv, n); err != nil {
		return err
	}
	return n.net.flush()
}

func (n *Node) ref() portRef { return portRef{n.owner, n.index} }

package connectivity

// Probe reports whether the network is currently reachable.
type Probe interface {
	IsConnected() bool
}

// Static is a probe with a fixed answer.
type Static bool

// IsConnected returns the fixed value.
func (s Static) IsConnected() bool { return bool(s) }

// Func adapts a plain function to Probe. A nil Func reports disconnected.
type Func func() bool

// IsConnected calls f.
func (f Func) IsConnected() bool {
	if f == nil {
		return false
	}
	return f()
}

// Always is a probe that is always connected.
var Always Probe = Static(true)

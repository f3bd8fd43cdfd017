package object

// Status is the enumerated outcome of streaming and command
// operations. OK is zero; failures are negative so the wire carries
// them as a single signed byte.
type Status int8

const (
	StatusOK                Status = 0
	StatusUnknownCommand    Status = -1
	StatusInvalidChain      Status = -2
	StatusNotWritable       Status = -3
	StatusInvalidType       Status = -4
	StatusInsufficientSpace Status = -5
	StatusContainerFull     Status = -6
	StatusProfileNotFound   Status = -7
	StatusProfileInUse      Status = -8
	StatusNoActiveProfile   Status = -9
	StatusStreamError       Status = -10
	StatusNotOpenContainer  Status = -11
	StatusInvalidDefinition Status = -12
	StatusInvalidSize       Status = -13
)

// OK reports success.
func (s Status) OK() bool { return s == StatusOK }

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusInvalidChain:
		return "invalid id chain"
	case StatusNotWritable:
		return "object not writable"
	case StatusInvalidType:
		return "invalid object type"
	case StatusInsufficientSpace:
		return "insufficient space"
	case StatusContainerFull:
		return "container full"
	case StatusProfileNotFound:
		return "profile not found"
	case StatusProfileInUse:
		return "profile in use"
	case StatusNoActiveProfile:
		return "no active profile"
	case StatusStreamError:
		return "stream error"
	case StatusNotOpenContainer:
		return "not an open container"
	case StatusInvalidDefinition:
		return "invalid definition"
	case StatusInvalidSize:
		return "invalid size"
	default:
		return "unknown status"
	}
}

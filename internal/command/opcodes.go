// Package command implements the binary command set: request parsing,
// chain resolution against the object tree, definition persistence,
// and response encoding. The transport framing lives in comms.
package command

// Opcode identifies one wire command. A response always starts with
// the request opcode followed by a status byte.
type Opcode byte

const (
	OpReadValue        Opcode = 0x01
	OpSetValue         Opcode = 0x02
	OpCreateObject     Opcode = 0x03
	OpDeleteObject     Opcode = 0x04
	OpListObjects      Opcode = 0x05
	OpNextFreeSlot     Opcode = 0x06
	OpCreateProfile    Opcode = 0x07
	OpDeleteProfile    Opcode = 0x08
	OpActivateProfile  Opcode = 0x09
	OpLogValues        Opcode = 0x0A
	OpReset            Opcode = 0x0B
	OpNextFreeSlotRoot Opcode = 0x0C
	OpListProfiles     Opcode = 0x0E
	OpReadSystemValue  Opcode = 0x0F
	OpSetSystemValue   Opcode = 0x10
)

// ResetEraseProfiles is the Reset flag bit that reformats the profile
// store instead of just rebuilding the tree.
const ResetEraseProfiles byte = 0x01

func (o Opcode) String() string {
	switch o {
	case OpReadValue:
		return "read-value"
	case OpSetValue:
		return "set-value"
	case OpCreateObject:
		return "create-object"
	case OpDeleteObject:
		return "delete-object"
	case OpListObjects:
		return "list-objects"
	case OpNextFreeSlot:
		return "next-free-slot"
	case OpCreateProfile:
		return "create-profile"
	case OpDeleteProfile:
		return "delete-profile"
	case OpActivateProfile:
		return "activate-profile"
	case OpLogValues:
		return "log-values"
	case OpReset:
		return "reset"
	case OpNextFreeSlotRoot:
		return "next-free-slot-root"
	case OpListProfiles:
		return "list-profiles"
	case OpReadSystemValue:
		return "read-system-value"
	case OpSetSystemValue:
		return "set-system-value"
	default:
		return "unknown"
	}
}

package smtp

import "fmt"

// Stage is a step of the delivery sequence. A delivery only moves forward:
//
//	Unconnected → Connected → EncryptionNegotiated → Authenticated → Sent → Closed
type Stage int

const (
	StageUnconnected Stage = iota
	StageConnected
	StageEncryptionNegotiated
	StageAuthenticated
	StageSent
	StageClosed
)

func (s Stage) String() string {
	switch s {
	case StageUnconnected:
		return "unconnected"
	case StageConnected:
		return "connected"
	case StageEncryptionNegotiated:
		return "encryption_negotiated"
	case StageAuthenticated:
		return "authenticated"
	case StageSent:
		return "sent"
	case StageClosed:
		return "closed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// DeliveryError reports the last stage reached before a delivery failed.
type DeliveryError struct {
	Stage Stage
	Op    string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("smtp %s (at %s): %v", e.Op, e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

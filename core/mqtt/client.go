package mqtt

import "time"

// Client represents an MQTT client capable of sending irrigation orders and
// waiting for acknowledgments from field controllers.
type Client interface {
	// SendOrder sends an irrigation order to the given parcel's controller and
	// returns the command identifier used to track the acknowledgment.
	SendOrder(parcelID string, day int, depthMM float64) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}

package core

import "fmt"

// ReplayStatus is the result of replaying a single API call packet.
type ReplayStatus int

const (
	ReplaySuccess ReplayStatus = iota
	ReplayError                // internal error unrelated to the packet
	ReplayInvalidID            // packet id not known to the replayer
	ReplayBadReturn            // return value differs from the recorded one
	ReplayCallError            // the replayed call itself failed
	ReplayInvalidParams        // trace parameters could not be interpreted
	ReplayValidationError      // validation layer reported an error
)

var statusNames = map[ReplayStatus]string{
	ReplaySuccess:         "success",
	ReplayError:           "error",
	ReplayInvalidID:       "invalid-id",
	ReplayBadReturn:       "bad-return",
	ReplayCallError:       "call-error",
	ReplayInvalidParams:   "invalid-params",
	ReplayValidationError: "validation-error",
}

func (s ReplayStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status-%d", int(s))
}

// Err returns nil for ReplaySuccess and an error wrapping ErrReplayFailed otherwise.
func (s ReplayStatus) Err() error {
	if s == ReplaySuccess {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrReplayFailed, s)
}

package vulkan

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by executors when a validation layer rejects a call.
var ErrValidation = errors.New("vulkan: validation error")

// Call is an interpreted API call packet.
type Call struct {
	EntryPoint
	PacketIndex uint64
	Recorded    Result
	Params      []byte
}

// Executor issues interpreted calls against a Vulkan context.
type Executor interface {
	Execute(call *Call) (Result, error)
}

// DryRunExecutor issues nothing and reports the recorded result.
type DryRunExecutor struct{}

func (DryRunExecutor) Execute(call *Call) (Result, error) {
	return call.Recorded, nil
}

func newExecutor(name string) (Executor, error) {
	switch name {
	case "", "dry-run":
		return DryRunExecutor{}, nil
	default:
		return nil, fmt.Errorf("unknown executor %q", name)
	}
}

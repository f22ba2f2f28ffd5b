package vulkan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vkreplay/internal/core"
)

type scriptedExecutor struct {
	results map[string]Result
	err     error
	calls   []string
}

func (e *scriptedExecutor) Execute(call *Call) (Result, error) {
	e.calls = append(e.calls, call.Name)
	if e.err != nil {
		return 0, e.err
	}
	if r, ok := e.results[call.Name]; ok {
		return r, nil
	}
	return call.Recorded, nil
}

func callPacket(t *testing.T, name string, recorded Result) *core.Packet {
	t.Helper()
	id, ok := PacketID(name)
	require.True(t, ok, name)
	return &core.Packet{
		Header:  core.Header{TracerID: core.TracerVulkan, PacketID: id},
		Kind:    core.KindAPICall,
		Payload: EncodeCall(recorded, []byte{0xaa}),
	}
}

func replay(t *testing.T, r *Replayer, p *core.Packet) core.ReplayStatus {
	t.Helper()
	call, err := r.Interpret(p)
	require.NoError(t, err)
	return r.Replay(call)
}

func TestInterpret(t *testing.T) {
	r := NewReplayer()
	require.NoError(t, r.Init(nil))

	v, err := r.Interpret(callPacket(t, "vkQueueSubmit", ErrorDeviceLost))
	require.NoError(t, err)
	call := v.(*Call)
	assert.Equal(t, "vkQueueSubmit", call.Name)
	assert.Equal(t, ErrorDeviceLost, call.Recorded)
	assert.Equal(t, []byte{0xaa}, call.Params)
	assert.False(t, call.Present)
}

func TestInterpretUnknownEntryPoint(t *testing.T) {
	r := NewReplayer()
	require.NoError(t, r.Init(nil))

	p := &core.Packet{Header: core.Header{PacketID: core.PacketBeginAPI + 500}, Payload: EncodeCall(Success, nil)}
	_, err := r.Interpret(p)
	assert.True(t, errors.Is(err, core.ErrUnknownEntryPoint))
}

func TestInterpretShortPayload(t *testing.T) {
	r := NewReplayer()
	require.NoError(t, r.Init(nil))

	p := callPacket(t, "vkCmdDraw", Success)
	p.Payload = p.Payload[:2]
	_, err := r.Interpret(p)
	assert.Error(t, err)
}

func TestDryRunCountsPresentedFrames(t *testing.T) {
	r := NewReplayer()
	require.NoError(t, r.Init(nil))
	assert.Equal(t, 0, r.FrameNumber())

	for i := 0; i < 3; i++ {
		assert.Equal(t, core.ReplaySuccess, replay(t, r, callPacket(t, "vkQueueSubmit", Success)))
		assert.Equal(t, i, r.FrameNumber())
		assert.Equal(t, core.ReplaySuccess, replay(t, r, callPacket(t, "vkQueuePresentKHR", Success)))
		assert.Equal(t, i+1, r.FrameNumber())
	}

	r.ResetFrameNumber(1)
	assert.Equal(t, 1, r.FrameNumber())
}

func TestReplayStatuses(t *testing.T) {
	tests := []struct {
		name string
		exec *scriptedExecutor
		opts map[string]any
		want core.ReplayStatus
	}{
		{
			name: "matching failure result",
			exec: &scriptedExecutor{results: map[string]Result{"vkCreateDevice": ErrorInitFailed}},
			want: core.ReplaySuccess,
		},
		{
			name: "return mismatch",
			exec: &scriptedExecutor{results: map[string]Result{"vkCreateDevice": ErrorDeviceLost}},
			want: core.ReplayBadReturn,
		},
		{
			name: "return mismatch ignored",
			exec: &scriptedExecutor{results: map[string]Result{"vkCreateDevice": ErrorDeviceLost}},
			opts: map[string]any{"ignore_return_mismatch": true},
			want: core.ReplaySuccess,
		},
		{
			name: "call error",
			exec: &scriptedExecutor{err: errors.New("driver crashed")},
			want: core.ReplayCallError,
		},
		{
			name: "validation error",
			exec: &scriptedExecutor{err: fmt.Errorf("%w: VUID-vkCreateDevice", ErrValidation)},
			want: core.ReplayValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReplayer(WithExecutor(tt.exec))
			require.NoError(t, r.Init(tt.opts))

			got := replay(t, r, callPacket(t, "vkCreateDevice", ErrorInitFailed))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"vkCreateDevice"}, tt.exec.calls)
		})
	}
}

func TestFailedPresentDoesNotAdvanceFrame(t *testing.T) {
	exec := &scriptedExecutor{err: errors.New("surface lost")}
	r := NewReplayer(WithExecutor(exec))
	require.NoError(t, r.Init(nil))

	assert.Equal(t, core.ReplayCallError, replay(t, r, callPacket(t, "vkQueuePresentKHR", Success)))
	assert.Equal(t, 0, r.FrameNumber())
}

func TestReplayRejectsForeignCall(t *testing.T) {
	r := NewReplayer()
	require.NoError(t, r.Init(nil))
	assert.Equal(t, core.ReplayError, r.Replay("not a call"))
}

func TestInitOptions(t *testing.T) {
	r := NewReplayer()
	assert.Error(t, r.Init(map[string]any{"executor": "gpu"}))

	r = NewReplayer()
	assert.Error(t, r.Init(map[string]any{"ignore_return_mismatch": "maybe"}))
}

func TestInitScreenshotEnv(t *testing.T) {
	t.Setenv(core.ScreenshotEnv, "0,2")
	r := NewReplayer()
	require.NoError(t, r.Init(nil))
	assert.True(t, r.screenshots[0])
	assert.True(t, r.screenshots[2])
	assert.False(t, r.screenshots[1])

	t.Setenv(core.ScreenshotEnv, "two")
	assert.Error(t, NewReplayer().Init(nil))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", Success.String())
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", ErrorOutOfDateKHR.String())
	assert.Equal(t, "VkResult(77)", Result(77).String())
}

package replayer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vkreplay/internal/core"
)

type nopReplayer struct {
	name  string
	frame int
}

func (r *nopReplayer) Name() string                          { return r.name }
func (r *nopReplayer) Init(map[string]any) error             { return nil }
func (r *nopReplayer) Interpret(p *core.Packet) (any, error) { return p, nil }
func (r *nopReplayer) Replay(any) core.ReplayStatus          { return core.ReplaySuccess }
func (r *nopReplayer) FrameNumber() int                      { return r.frame }
func (r *nopReplayer) ResetFrameNumber(frame int)            { r.frame = frame }
func (r *nopReplayer) Deinit() error                         { return nil }

func TestRegisterAndNew(t *testing.T) {
	factoryReg.Reset()

	RegisterFactory(core.TracerVulkan, func() Replayer {
		return &nopReplayer{name: "test"}
	})

	r, err := New(core.TracerVulkan)
	require.NoError(t, err)
	assert.Equal(t, "test", r.Name())
}

func TestNewUnknownTracer(t *testing.T) {
	factoryReg.Reset()

	_, err := New(core.TracerID(9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoFactory))
}

func TestNewNilReplayer(t *testing.T) {
	factoryReg.Reset()
	RegisterFactory(core.TracerVulkan, func() Replayer { return nil })

	_, err := New(core.TracerVulkan)
	assert.True(t, errors.Is(err, core.ErrReplayerInit))
}

func TestRegisterReplaces(t *testing.T) {
	factoryReg.Reset()
	RegisterFactory(core.TracerVulkan, func() Replayer { return &nopReplayer{name: "first"} })
	RegisterFactory(core.TracerVulkan, func() Replayer { return &nopReplayer{name: "second"} })

	r, err := New(core.TracerVulkan)
	require.NoError(t, err)
	assert.Equal(t, "second", r.Name())
}

func TestTracerTable(t *testing.T) {
	info, ok := Tracer(core.TracerVulkan)
	require.True(t, ok)
	assert.True(t, info.NeedsReplayer)

	info, ok = Tracer(core.TracerGLFPS)
	require.True(t, ok)
	assert.False(t, info.NeedsReplayer)

	_, ok = Tracer(core.TracerReserved)
	assert.False(t, ok)
}

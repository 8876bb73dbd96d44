package app

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

// waitInstalled polls until no background generation is pending.
func waitInstalled(t *testing.T, s *RenderState) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for s.Pending() {
		require.NoError(t, s.Poll())
		if time.Now().After(deadline) {
			t.Fatal("background generation never installed")
		}
		time.Sleep(time.Millisecond)
	}
}

// waitHistory polls until total generation records reach n.
func waitHistory(t *testing.T, s *RenderState, n int) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for s.History().Total() < n {
		require.NoError(t, s.Poll())
		if time.Now().After(deadline) {
			t.Fatalf("expected %d generation records, got %d", n, s.History().Total())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRebuildKeepsExactlyOneLiveResource(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, rig.state.Rebuild(smallParams(100+i)))
		assert.Equal(t, 1, rig.scene.Count(), "after rebuild %d", i+1)
	}

	require.Len(t, rig.factory.built, n)
	for i, r := range rig.factory.built[:n-1] {
		assert.True(t, r.unloaded, "resource %d should be disposed", i+1)
	}
	last := rig.factory.last()
	assert.False(t, last.unloaded)
	assert.Same(t, last, rig.state.Live())
	assert.Equal(t, 104, rig.state.Params().Count)
}

func TestRebuildUploadsExactArrays(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	require.NoError(t, rig.state.Rebuild(smallParams(321)))

	f := rig.factory.last().field
	require.NoError(t, f.Validate())
	assert.Equal(t, 321, f.Count)
	assert.Len(t, f.Positions, 963)
	assert.Len(t, f.Scales, 321)
}

func TestRebuildIdenticalParametersDiffer(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	p := smallParams(200)

	require.NoError(t, rig.state.Rebuild(p))
	require.NoError(t, rig.state.Rebuild(p))

	a, b := rig.factory.built[0].field, rig.factory.built[1].field
	require.NoError(t, a.Validate())
	require.NoError(t, b.Validate())
	assert.NotEqual(t, a.Radii, b.Radii)
}

func TestRebuildClampsInvalidParameters(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Baked})
	p := smallParams(-3)
	p.Branches = 0
	p.Radius = -1

	require.NoError(t, rig.state.Rebuild(p))
	f := rig.factory.last().field
	assert.Equal(t, 1, f.Count)
	assert.Equal(t, 1, f.Branches)
	assert.Equal(t, galaxy.MinRadius, rig.state.Params().Radius)
}

func TestBuildErrorKeepsPreviousResource(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	require.NoError(t, rig.state.Rebuild(smallParams(100)))
	live := rig.state.Live()

	rig.factory.err = errors.New("out of video memory")
	err := rig.state.Rebuild(smallParams(200))
	require.Error(t, err)
	assert.ErrorContains(t, err, "out of video memory")

	assert.Same(t, live, rig.state.Live())
	assert.Equal(t, 1, rig.scene.Count())
	assert.False(t, rig.factory.last().unloaded)
}

func TestApplyAnimateToggleDoesNotRebuild(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	p := smallParams(100)
	require.NoError(t, rig.state.Apply(p))
	require.Len(t, rig.factory.built, 1)

	p.Animate = true
	require.NoError(t, rig.state.Apply(p))
	assert.Len(t, rig.factory.built, 1)
	assert.True(t, rig.state.Params().Animate)

	p.Spin = 3
	require.NoError(t, rig.state.Apply(p))
	assert.Len(t, rig.factory.built, 2)
	assert.Equal(t, 3.0, rig.state.Params().Spin)
}

func TestAnimateToggledDuringBackgroundBuildSurvivesInstall(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred, AsyncThreshold: 1000})
	require.NoError(t, rig.state.Rebuild(smallParams(100)))

	p := smallParams(5000)
	require.NoError(t, rig.state.Apply(p))
	require.True(t, rig.state.Pending())

	p.Animate = true
	require.NoError(t, rig.state.Apply(p))
	assert.True(t, rig.state.Pending(), "animate toggle must not restart generation")

	waitInstalled(t, rig.state)
	assert.Equal(t, 5000, rig.state.Params().Count)
	assert.True(t, rig.state.Params().Animate)
	assert.True(t, rig.state.Requested().Animate)
}

func TestBakedModeNeverAnimates(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Baked})
	p := smallParams(100)
	p.Animate = true

	require.NoError(t, rig.state.Rebuild(p))
	assert.False(t, rig.state.Params().Animate)
	assert.Equal(t, galaxy.Baked, rig.factory.last().material.Mode)
}

func TestResizeClampsPixelRatio(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	require.NoError(t, rig.state.Rebuild(smallParams(100)))

	rig.state.Resize(1024, 768, 3)
	assert.Equal(t, 2.0, rig.state.PixelRatio())
	live := rig.factory.last()
	assert.Equal(t, float32(2), live.pixelRatio)
	assert.Equal(t, 768, live.height)
	assert.Equal(t, float32(1024), rig.camera.ViewportW)

	// New builds are sized with the same factor
	require.NoError(t, rig.state.Rebuild(smallParams(100)))
	m := rig.factory.last().material
	assert.Equal(t, float32(2), m.PixelRatio)
	assert.Equal(t, float32(30), m.ShaderSize())

	rig.state.Resize(1024, 768, 1.25)
	assert.Equal(t, float32(1.25), rig.factory.last().pixelRatio)
}

func TestResizeKeepsLowPixelRatio(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	require.NoError(t, rig.state.Rebuild(smallParams(100)))

	rig.state.Resize(800, 600, 0.5)
	assert.Equal(t, 0.5, rig.state.PixelRatio())
	assert.Equal(t, float32(0.5), rig.factory.last().pixelRatio)

	rig.state.Resize(800, 600, 0)
	assert.Equal(t, 1.0, rig.state.PixelRatio())
	rig.state.Resize(800, 600, math.NaN())
	assert.Equal(t, 1.0, rig.state.PixelRatio())
}

func TestAdvanceTimeReachesNewResources(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	require.NoError(t, rig.state.Rebuild(smallParams(100)))

	rig.state.AdvanceTime(0.5)
	assert.Equal(t, float32(0.5), rig.factory.last().time)

	require.NoError(t, rig.state.Rebuild(smallParams(150)))
	assert.Equal(t, float32(0.5), rig.factory.last().time)
}

func TestRequestRebuildAsyncInstallsOnPoll(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred, AsyncThreshold: 100})

	require.NoError(t, rig.state.RequestRebuild(smallParams(5000)))
	assert.True(t, rig.state.Pending())
	assert.Equal(t, 0, rig.scene.Count(), "nothing is installed before Poll")
	assert.Empty(t, rig.factory.built)

	waitInstalled(t, rig.state)
	assert.Equal(t, 1, rig.scene.Count())
	assert.Equal(t, 5000, rig.state.Params().Count)

	rec, ok := rig.state.History().Last()
	require.True(t, ok)
	assert.True(t, rec.Async)
	assert.False(t, rec.Discarded)
}

func TestRequestRebuildBelowThresholdIsSynchronous(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred, AsyncThreshold: 1000})

	require.NoError(t, rig.state.RequestRebuild(smallParams(500)))
	assert.False(t, rig.state.Pending())
	assert.Equal(t, 1, rig.scene.Count())
}

func TestNewerRequestSupersedesOlder(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred, AsyncThreshold: 100})

	require.NoError(t, rig.state.RequestRebuild(smallParams(20000)))
	require.NoError(t, rig.state.RequestRebuild(smallParams(3000)))

	waitInstalled(t, rig.state)
	waitHistory(t, rig.state, 2)

	assert.Len(t, rig.factory.built, 1, "the superseded field is never uploaded")
	assert.Equal(t, 3000, rig.state.Params().Count)
	assert.Equal(t, 1, rig.scene.Count())

	discarded := 0
	for _, rec := range rig.state.History().Recent() {
		if rec.Discarded {
			discarded++
			assert.Equal(t, 20000, rec.Count)
		}
	}
	assert.Equal(t, 1, discarded)
}

func TestSyncRebuildSupersedesAsync(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred, AsyncThreshold: 100})

	require.NoError(t, rig.state.RequestRebuild(smallParams(20000)))
	require.NoError(t, rig.state.Rebuild(smallParams(50)))
	assert.False(t, rig.state.Pending())

	waitHistory(t, rig.state, 2)
	assert.Len(t, rig.factory.built, 1)
	assert.Equal(t, 50, rig.state.Params().Count)
}

func TestLiveReadsTheSceneNode(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred})
	require.NoError(t, rig.state.Rebuild(smallParams(100)))
	assert.Same(t, rig.factory.last(), rig.state.Live())

	rig.scene.Clear()
	assert.Nil(t, rig.state.Live(), "a detached node is not live")
}

func TestShutdownDisposesLiveResource(t *testing.T) {
	rig := newRig(t, Options{Mode: galaxy.Deferred, AsyncThreshold: 100})
	require.NoError(t, rig.state.Rebuild(smallParams(50)))
	require.NoError(t, rig.state.RequestRebuild(smallParams(50000)))

	rig.state.Shutdown()
	assert.True(t, rig.factory.last().unloaded)
	assert.Equal(t, 0, rig.scene.Count())
	assert.Nil(t, rig.state.Live())
	assert.False(t, rig.state.Pending())

	assert.Error(t, rig.state.Rebuild(smallParams(50)))
	rig.state.Shutdown() // idempotent
}

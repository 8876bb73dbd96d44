package app

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/scene"
)

type fakeResource struct {
	id         int
	field      *galaxy.Field
	material   Material
	time       float32
	pixelRatio float32
	height     int
	draws      int
	unloaded   bool
}

func (r *fakeResource) Draw()            { r.draws++ }
func (r *fakeResource) Unload()          { r.unloaded = true }
func (r *fakeResource) SetTime(t float32) { r.time = t }
func (r *fakeResource) Resize(pixelRatio float32, height int) {
	r.pixelRatio = pixelRatio
	r.height = height
}

type fakeFactory struct {
	built []*fakeResource
	err   error
}

func (f *fakeFactory) Build(field *galaxy.Field, m Material) (Resource, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := &fakeResource{
		id:         len(f.built) + 1,
		field:      field,
		material:   m,
		pixelRatio: m.PixelRatio,
		height:     m.Height,
	}
	f.built = append(f.built, r)
	return r, nil
}

func (f *fakeFactory) last() *fakeResource {
	if len(f.built) == 0 {
		return nil
	}
	return f.built[len(f.built)-1]
}

type fakeRenderer struct {
	scene  *scene.Scene
	frames int
}

func (r *fakeRenderer) Render() {
	r.frames++
	if r.scene != nil {
		r.scene.Draw()
	}
}

type fakeControls struct{ updates int }

func (c *fakeControls) Update() bool {
	c.updates++
	return false
}

type fakeViewport struct {
	resized       bool
	width, height int
	dpr           float64
}

func (v *fakeViewport) Resized() bool {
	r := v.resized
	v.resized = false
	return r
}

func (v *fakeViewport) Size() (int, int, float64) { return v.width, v.height, v.dpr }

type testRig struct {
	state   *RenderState
	factory *fakeFactory
	scene   *scene.Scene
	camera  *camera.Camera
}

func newRig(t *testing.T, opts Options) *testRig {
	t.Helper()
	factory := &fakeFactory{}
	sc := scene.New()
	cam := camera.New(mgl32.Vec3{0, 5, 7}, mgl32.Vec3{}, 75, 800, 600)
	state := NewRenderState(factory, sc, cam, rand.New(rand.NewSource(1)), opts)
	t.Cleanup(state.Shutdown)
	return &testRig{state: state, factory: factory, scene: sc, camera: cam}
}

func smallParams(count int) galaxy.Parameters {
	p := galaxy.Defaults()
	p.Count = count
	return p
}

package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Normaly0/galaxy-gen/app"
	"github.com/Normaly0/galaxy-gen/galaxy"
)

// PointCloud is an uploaded galaxy field drawn as point sprites.
//
// Vertex attributes:
//   - position: base arm position (deferred) or final position (baked)
//   - color: sRGB8 gradient color
//   - texcoord.x: per-point scale (deferred)
//   - normal: per-point random offset (deferred)
type PointCloud struct {
	// gpu holds only the GPU handles of the uploaded mesh; it never
	// references Go memory, so it is safe to pass to raylib by value.
	gpu      rl.Mesh
	material rl.Material
	ps       pointShader

	mode     galaxy.Mode
	size     float32 // unscaled size parameter
	count    int
	uploaded bool
}

// NewPointCloud uploads f and compiles the program for m.Mode. The caller
// owns the result and must call Unload.
func NewPointCloud(f *galaxy.Field, m app.Material) (*PointCloud, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	ps, err := loadPointShader(m.Mode)
	if err != nil {
		return nil, err
	}

	mesh := buildMesh(f, m.Mode)
	rl.UploadMesh(&mesh, false)
	if mesh.VaoID == 0 {
		rl.UnloadShader(ps.shader)
		return nil, fmt.Errorf("uploading point mesh of %d points", f.Count)
	}

	material := rl.LoadMaterialDefault()
	material.Shader = ps.shader

	pc := &PointCloud{
		gpu: rl.Mesh{
			VertexCount:   mesh.VertexCount,
			TriangleCount: mesh.TriangleCount,
			VaoID:         mesh.VaoID,
			VboID:         mesh.VboID,
		},
		material: material,
		ps:       ps,
		mode:     m.Mode,
		size:     m.Size,
		count:    f.Count,
		uploaded: true,
	}
	pc.Resize(m.PixelRatio, m.Height)

	logger().Info("point cloud uploaded",
		"mode", m.Mode.String(),
		"points", f.Count,
		"vertices", mesh.VertexCount,
		"vao", mesh.VaoID,
	)
	return pc, nil
}

// buildMesh lays the field out as raylib vertex arrays. The vertex count is
// padded to a whole number of triangles with zero-size black points, since
// raylib submits non-indexed meshes as triangles.
func buildMesh(f *galaxy.Field, mode galaxy.Mode) rl.Mesh {
	n := paddedCount(f.Count)

	vertices := make([]float32, n*3)
	copy(vertices, f.Positions)

	colors := make([]uint8, n*4)
	for i := 0; i < f.Count; i++ {
		r, g, b := f.Color(i).SRGB8()
		colors[i*4] = r
		colors[i*4+1] = g
		colors[i*4+2] = b
		colors[i*4+3] = 255
	}

	mesh := rl.Mesh{
		VertexCount:   int32(n),
		TriangleCount: int32(n / 3),
		Vertices:      &vertices[0],
		Colors:        &colors[0],
	}

	if mode == galaxy.Deferred {
		texcoords := make([]float32, n*2)
		for i, s := range f.Scales {
			texcoords[i*2] = s
		}
		normals := make([]float32, n*3)
		copy(normals, f.RandomOffsets)

		mesh.Texcoords = &texcoords[0]
		mesh.Normals = &normals[0]
	}
	return mesh
}

// paddedCount rounds count up to a non-zero multiple of 3.
func paddedCount(count int) int {
	n := (count + 2) / 3 * 3
	if n == 0 {
		n = 3
	}
	return n
}

// Draw renders the cloud with additive blending and depth writes off. Must
// be called between BeginMode3D and EndMode3D.
func (pc *PointCloud) Draw() {
	if !pc.uploaded {
		return
	}
	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DisableDepthMask()
	rl.EnablePointMode()
	rl.DisableBackfaceCulling()

	rl.DrawMesh(pc.gpu, pc.material, rl.MatrixIdentity())

	rl.EnableBackfaceCulling()
	rl.DisableWireMode() // restores filled polygons
	rl.EnableDepthMask()
	rl.EndBlendMode()
}

// SetTime updates the animation time uniform. Baked programs ignore it.
func (pc *PointCloud) SetTime(t float32) {
	if !pc.uploaded {
		return
	}
	pc.ps.setFloat(pc.ps.timeLoc, t)
}

// Resize updates the size uniforms for a new pixel ratio and viewport
// height.
func (pc *PointCloud) Resize(pixelRatio float32, height int) {
	if !pc.uploaded {
		return
	}
	m := app.Material{Mode: pc.mode, Size: pc.size, PixelRatio: pixelRatio, Height: height}
	pc.ps.setFloat(pc.ps.sizeLoc, m.ShaderSize())
	pc.ps.setFloat(pc.ps.scaleLoc, m.AttenuationScale())
}

// Count returns the number of galaxy points, excluding padding.
func (pc *PointCloud) Count() int {
	return pc.count
}

// Unload releases the mesh, the material and its shader. Safe to call more
// than once.
func (pc *PointCloud) Unload() {
	if !pc.uploaded {
		return
	}
	pc.uploaded = false
	rl.UnloadMesh(&pc.gpu)
	rl.UnloadMaterial(pc.material) // also unloads pc.ps.shader
	logger().Debug("point cloud unloaded", "points", pc.count)
}

// Factory uploads generated fields as PointClouds.
type Factory struct{}

// Build implements app.ResourceFactory.
func (Factory) Build(f *galaxy.Field, m app.Material) (app.Resource, error) {
	pc, err := NewPointCloud(f, m)
	if err != nil {
		return nil, fmt.Errorf("point cloud: %w", err)
	}
	return pc, nil
}

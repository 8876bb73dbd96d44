package renderer

import (
	"embed"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Normaly0/galaxy-gen/galaxy"
)

//go:embed shaders/*.vs shaders/*.fs
var shaderFS embed.FS

// Uniform names used by the point programs.
const (
	uniformSize  = "uSize"
	uniformTime  = "uTime"
	uniformScale = "uScale"
)

// shaderSource returns the vertex and fragment source for a render mode.
func shaderSource(mode galaxy.Mode) (vs, fs string, err error) {
	name := "galaxy"
	if mode == galaxy.Baked {
		name = "baked"
	}
	v, err := shaderFS.ReadFile("shaders/" + name + ".vs")
	if err != nil {
		return "", "", fmt.Errorf("reading %s vertex shader: %w", name, err)
	}
	f, err := shaderFS.ReadFile("shaders/" + name + ".fs")
	if err != nil {
		return "", "", fmt.Errorf("reading %s fragment shader: %w", name, err)
	}
	return string(v), string(f), nil
}

// pointShader is a compiled point program with its uniform locations.
type pointShader struct {
	shader   rl.Shader
	sizeLoc  int32
	timeLoc  int32
	scaleLoc int32
}

// loadPointShader compiles the program for mode. Must be called after the
// window is created.
func loadPointShader(mode galaxy.Mode) (pointShader, error) {
	vs, fs, err := shaderSource(mode)
	if err != nil {
		return pointShader{}, err
	}

	sh := rl.LoadShaderFromMemory(vs, fs)
	if !rl.IsShaderValid(sh) {
		return pointShader{}, fmt.Errorf("compiling %s point shader", mode)
	}

	ps := pointShader{
		shader:   sh,
		sizeLoc:  rl.GetShaderLocation(sh, uniformSize),
		timeLoc:  rl.GetShaderLocation(sh, uniformTime),
		scaleLoc: rl.GetShaderLocation(sh, uniformScale),
	}
	logger().Debug("point shader loaded", "mode", mode.String(), "id", sh.ID)
	return ps, nil
}

// setFloat sets a float uniform; locations of -1 (absent uniforms) are skipped.
func (ps pointShader) setFloat(loc int32, v float32) {
	if loc < 0 {
		return
	}
	rl.SetShaderValue(ps.shader, loc, []float32{v}, rl.ShaderUniformFloat)
}

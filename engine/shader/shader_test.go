package shader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/brics-go/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
struct Camera {
    view_proj: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;

// @vertex fn commented_out() {}
@vertex
fn main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(position, 1.0);
}
`

const fragmentSource = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.5, 0.25, 1.0);
}
`

func writeShader(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))
	return path
}

func TestEntryPoints(t *testing.T) {
	assert.Equal(t, []string{"main"}, entryPoints(vertexSource, StageVertex))
	assert.Empty(t, entryPoints(vertexSource, StageFragment))
	assert.Equal(t, []string{"main"}, entryPoints(fragmentSource, StageFragment))

	nested := "/* outer /* @vertex fn hidden() */ still */\n@vertex fn shown() {}"
	assert.Equal(t, []string{"shown"}, entryPoints(nested, StageVertex))
}

func TestCompileSPIRV(t *testing.T) {
	m, err := Compile("basic.vert", vertexSource, StageVertex)
	require.NoError(t, err)
	assert.Equal(t, "main", m.EntryPoint)
	assert.Equal(t, FormatSPIRV, m.Format)
	require.NotNil(t, m.Descriptor.SPIRVDescriptor)
	assert.Nil(t, m.Descriptor.WGSLDescriptor)

	code := m.Descriptor.SPIRVDescriptor.Code
	require.GreaterOrEqual(t, len(code), 20)
	assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07}, []byte(code[:4]))
	assert.Zero(t, len(code)%4)
}

func TestCompileWGSL(t *testing.T) {
	m, err := Compile("basic.frag", fragmentSource, StageFragment, WithFormat(FormatWGSL))
	require.NoError(t, err)
	require.NotNil(t, m.Descriptor.WGSLDescriptor)
	assert.Equal(t, fragmentSource, m.Descriptor.WGSLDescriptor.Code)
	assert.Equal(t, "basic.frag", m.Descriptor.Label)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		stage  Stage
		opts   []CompileOption
	}{
		{name: "wrong stage", source: fragmentSource, stage: StageVertex},
		{name: "wrong entry point", source: vertexSource, stage: StageVertex, opts: []CompileOption{WithEntryPoint("vs_main")}},
		{name: "syntax error", source: "@vertex\nfn main( -> @builtin(position) vec4<f32> {", stage: StageVertex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.name, tt.source, tt.stage, tt.opts...)
			assert.ErrorIs(t, err, ErrCompile)
		})
	}

	_, err := CompileFile(filepath.Join(t.TempDir(), "missing.wgsl"), StageVertex)
	assert.ErrorIs(t, err, ErrCompile)
}

func TestModuleCreate(t *testing.T) {
	m, err := Compile("basic.frag", fragmentSource, StageFragment, WithFormat(FormatWGSL))
	require.NoError(t, err)

	device := gputest.NewDevice()
	_, err = m.CreateModule(device)
	require.NoError(t, err)
	require.Len(t, device.ShaderModules, 1)
	assert.Same(t, m.Descriptor, device.ShaderModules[0])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("WGSL")
	require.NoError(t, err)
	assert.Equal(t, FormatWGSL, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatSPIRV, f)

	_, err = ParseFormat("glsl")
	assert.Error(t, err)
}

func TestCompilerCompileFiles(t *testing.T) {
	dir := t.TempDir()
	vert := writeShader(t, dir, "basic.vert.wgsl", vertexSource)
	frag := writeShader(t, dir, "basic.frag.wgsl", fragmentSource)
	broken := writeShader(t, dir, "broken.frag.wgsl", vertexSource)

	c := NewCompiler(WithWorkers(2), WithCompilerFormat(FormatWGSL))
	assert.Equal(t, FormatWGSL, c.Format())

	modules, err := c.CompileFiles([]Request{
		{Path: vert, Stage: StageVertex},
		{Path: frag, Stage: StageFragment},
	})
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, vert, modules[0].Path)
	assert.Equal(t, StageVertex, modules[0].Stage)
	assert.Equal(t, frag, modules[1].Path)
	assert.Equal(t, "basic.frag.wgsl", modules[1].Label)

	modules, err = c.CompileFiles([]Request{
		{Path: vert, Stage: StageVertex},
		{Path: broken, Stage: StageFragment},
	})
	assert.ErrorIs(t, err, ErrCompile)
	assert.NotNil(t, modules[0])
	assert.Nil(t, modules[1])
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := writeShader(t, dir, "watched.wgsl", fragmentSource)
	other := writeShader(t, dir, "other.wgsl", fragmentSource)

	w, err := NewWatcher(watched)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(other, []byte(vertexSource), 0o600))
	require.NoError(t, os.WriteFile(watched, []byte(vertexSource), 0o600))

	want, err := filepath.Abs(watched)
	require.NoError(t, err)

	select {
	case got := <-w.Changed():
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for watched shader")
	}

	require.NoError(t, w.Close())
	assert.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-w.Changed():
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 10*time.Millisecond)
}

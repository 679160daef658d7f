package graphics

import (
	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/pipeline"
	"github.com/Carmen-Shannon/brics-go/engine/shader"
)

// reloadTarget remembers which files a pipeline was built from.
type reloadTarget struct {
	pipeline     pipeline.Pipeline
	vertexPath   string
	fragmentPath string
}

// reloadRegistry maps shader files to the pipelines built from them.
type reloadRegistry struct {
	targets []*reloadTarget
	byPath  map[string][]*reloadTarget
	watcher shader.Watcher
}

func newReloadRegistry() *reloadRegistry {
	return &reloadRegistry{byPath: make(map[string][]*reloadTarget)}
}

func (r *reloadRegistry) register(p pipeline.Pipeline, vertexPath, fragmentPath string) {
	t := &reloadTarget{pipeline: p, vertexPath: vertexPath, fragmentPath: fragmentPath}
	r.targets = append(r.targets, t)
	for _, path := range []string{vertexPath, fragmentPath} {
		if path == "" {
			continue
		}
		key := absPath(path)
		r.byPath[key] = append(r.byPath[key], t)
	}
}

func (r *reloadRegistry) paths() []string {
	out := make([]string, 0, len(r.byPath))
	for path := range r.byPath {
		out = append(out, path)
	}
	return out
}

// drain collects the targets of every change waiting on the watcher, each at most once,
// in registration order.
func (r *reloadRegistry) drain() []*reloadTarget {
	if r.watcher == nil {
		return nil
	}
	hit := make(map[*reloadTarget]bool)
	for done := false; !done; {
		select {
		case path, ok := <-r.watcher.Changed():
			if !ok {
				r.watcher = nil
				done = true
				continue
			}
			for _, t := range r.byPath[path] {
				hit[t] = true
			}
		default:
			done = true
		}
	}

	var out []*reloadTarget
	for _, t := range r.targets {
		if hit[t] {
			out = append(out, t)
		}
	}
	return out
}

func (r *reloadRegistry) close() {
	if r.watcher == nil {
		return
	}
	if err := r.watcher.Close(); err != nil {
		common.Logger().Warn("failed to close shader watcher", "error", err)
	}
	r.watcher = nil
}

func (m *manager) EnableHotReload() error {
	if m.reloads.watcher != nil {
		return nil
	}
	paths := m.reloads.paths()
	w, err := shader.NewWatcher(paths...)
	if err != nil {
		return err
	}
	m.reloads.watcher = w
	common.Logger().Info("shader hot reload enabled", "files", len(paths))
	return nil
}

func (m *manager) PollReloads() int {
	reloaded := 0
	for _, t := range m.reloads.drain() {
		shaders, _, err := m.loadShaders(t.vertexPath, t.fragmentPath, true)
		if err == nil {
			err = t.pipeline.Reload(m.device, shaders)
			releaseShaders(shaders)
		}
		if err != nil {
			common.Logger().Error("shader reload failed, keeping previous pipeline", "pipeline", t.pipeline.Label(), "error", err)
			continue
		}
		reloaded++
	}
	return reloaded
}

package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"go.uber.org/zap"

	"geomeasure/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
}

// loadPath loads a dataset and fits the view to it.
func (m *Model) loadPath(p string) {
	d, err := geom.Load(p)
	if err != nil {
		m.log.Warn("load failed", zap.String("path", p), zap.Error(err))
		m.status = "load error: " + err.Error()
		return
	}
	m.watchPath(p)
	m.selPath = p
	m.setData(d)
	m.canvas.reset(d.View())
	m.status = "loaded: " + filepath.Base(p) + "  counts: " + d.Counts()
	m.log.Info("loaded dataset", zap.String("path", p), zap.String("counts", d.Counts()))
}

// reload re-reads the open dataset keeping the viewport.
func (m *Model) reload() {
	d, err := geom.Load(m.selPath)
	if err != nil {
		m.status = "reload error: " + err.Error()
		return
	}
	m.setData(d)
	m.status = "reloaded: " + filepath.Base(m.selPath) + "  counts: " + d.Counts()
}

func (m *Model) setData(d geom.Data) {
	m.data = d
	// prefer polys > lines > points for visibility
	m.showPolys = len(d.Polygons) > 0
	m.showLines = len(d.Lines) > 0 && !m.showPolys
	m.showPoints = len(d.Points) > 0 && !m.showPolys
	// If attributes are currently shown, verify availability for the new dataset
	if m.showAttrs {
		m.refreshAttrsFromCurrent()
	}
}

func (m *Model) watchPath(p string) {
	if m.watcher == nil || p == m.selPath {
		return
	}
	if m.selPath != "" {
		if err := m.watcher.Unwatch(m.selPath); err != nil {
			m.log.Warn("unwatch", zap.String("path", m.selPath), zap.Error(err))
		}
	}
	if err := m.watcher.Watch(p); err != nil {
		m.log.Warn("watch", zap.String("path", p), zap.Error(err))
	}
}

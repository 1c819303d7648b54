package tui

import (
	"os"
	"time"

	"github.com/atotto/clipboard"
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"geomeasure/internal/config"
	"geomeasure/internal/draw"
	"geomeasure/internal/elevation"
	"geomeasure/internal/geom"
	"geomeasure/internal/watch"
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	cfg config.Config
	log *zap.Logger

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	data   geom.Data
	canvas *canvas

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showPoints bool
	showLines  bool
	showPolys  bool

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
	hoverHeight float64

	// attributes table
	showAttrs bool
	tbl       table.Model

	// finalized shapes table
	showShapes bool
	shapesTbl  table.Model

	// drawing panels
	shapes    *draw.Collection
	sessions  map[draw.ToolKind]*draw.Session
	active    draw.ToolKind
	panelOpen bool
	terrain   elevation.Terrain
	sampler   elevation.Sampler

	// double-press detection
	lastPress     time.Time
	lastPressCell draw.ScreenPoint
	now           func() time.Time

	copyText func(string) error
	watcher  *watch.Watcher
	path     string
}

// Option configures a Model.
type Option func(*Model)

func WithConfig(cfg config.Config) Option { return func(m *Model) { m.cfg = cfg } }

func WithLogger(l *zap.Logger) Option { return func(m *Model) { m.log = l } }

// WithTerrain sets the heights used for picking and for ground samples.
func WithTerrain(t elevation.Terrain, s elevation.Sampler) Option {
	return func(m *Model) { m.terrain, m.sampler = t, s }
}

// WithClock replaces time.Now for double-press detection.
func WithClock(now func() time.Time) Option { return func(m *Model) { m.now = now } }

// WithClipboard replaces the system clipboard.
func WithClipboard(f func(string) error) Option { return func(m *Model) { m.copyText = f } }

// WithWatcher reloads the open dataset when w reports a change.
func WithWatcher(w *watch.Watcher) Option { return func(m *Model) { m.watcher = w } }

// WithPath preloads a file's data at launch.
func WithPath(p string) Option { return func(m *Model) { m.path = p } }

func New(opts ...Option) Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		status:      "geomeasure ready",
		cfg:         config.Default(),
		log:         zap.NewNop(),
		showPoints:  true,
		showLines:   true,
		showPolys:   true,
		now:         time.Now,
		copyText:    clipboard.WriteAll,
	}
	for _, o := range opts {
		o(&m)
	}
	if m.terrain == nil {
		flat := elevation.Flat{Height: m.cfg.Elevation.BaseHeight}
		m.terrain, m.sampler = flat, flat
	}
	if m.sampler == nil {
		m.sampler = elevation.Flat{Height: m.cfg.Elevation.BaseHeight}
	}
	b := m.cfg.View.Bounds
	m.canvas = newCanvas(orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}}, m.terrain)

	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, MULTI*, GEOMETRYCOLLECTION). Press Enter to render; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// attributes table setup (columns will be inferred per dataset)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.shapesTbl = table.New(table.WithFocused(true))
	m.shapesTbl.SetHeight(12)

	m.shapes = draw.NewCollection()
	m.sessions = newSessions(m.cfg, m.canvas, m.shapes, m.log)

	m.refreshDir()
	if m.path != "" {
		m.loadPath(m.path)
	}
	return m
}

// newSessions builds one draw session per panel. They share the shape
// collection and its id sequence.
func newSessions(cfg config.Config, scene draw.Scene, shapes *draw.Collection, log *zap.Logger) map[draw.ToolKind]*draw.Session {
	g := draw.Geometry{Radius: cfg.Globe.Radius, LabelOffset: cfg.Globe.LabelOffset}
	seq := draw.NewSequence(1)
	out := map[draw.ToolKind]*draw.Session{}
	for _, t := range []draw.Tool{draw.DistanceTool(), draw.AreaTool(g), draw.PolygonTool(g), draw.HeightTool()} {
		out[t.Kind] = draw.NewSession(t, scene, shapes, seq, draw.WithLogger(log))
	}
	return out
}

func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForChange(m.watcher)
}

package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/einslab/sketchphys/internal/engine"
	"github.com/einslab/sketchphys/internal/geom"
	"github.com/einslab/sketchphys/internal/scene"
	"github.com/einslab/sketchphys/internal/transform"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
)

type TickMsg time.Time

// Model is the bubbletea state for the live scene view: the stepping
// engine, the draw canvas, and the history buffers for the mini charts.
type Model struct {
	src        *scene.Scene // normalized scene, kept for reset
	eng        *engine.Engine
	sceneName  string
	imageSize  transform.Size
	canvas     *Canvas
	fps        int
	running    bool
	useFit     bool // frame bodies instead of the image mapping
	theme      int
	styles     styleSet
	ropeHist   []float64
	energyHist []float64
}

// NewModel builds the live view for an already-normalized scene.
func NewModel(s *scene.Scene, imageSize transform.Size, fps int, sceneName string) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		src:       s,
		eng:       engine.New(s),
		sceneName: sceneName,
		imageSize: imageSize,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		fps:       fps,
		running:   true,
		styles:    newStyleSet(Themes[0]),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.eng = engine.New(m.src)
			m.ropeHist = m.ropeHist[:0]
			m.energyHist = m.energyHist[:0]
		case "f":
			m.useFit = !m.useFit
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyleSet(Themes[m.theme])
		}
		return m, nil
	case TickMsg:
		if m.running {
			m.eng.Step()
			m.ropeHist = appendCapped(m.ropeHist, m.eng.RopeError())
			m.energyHist = appendCapped(m.energyHist, m.eng.Energy())
		}
		return m, tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[len(hist)-historyCapacity:]
	}
	return hist
}

// currentTransform recomputes the canvas transform for this frame, per
// the ephemeral-transform contract: mapping-based letterbox when the
// scene has one, auto-frame fallback otherwise or on demand.
func (m *Model) currentTransform() transform.Canvas {
	if !m.useFit && m.src.Mapping != nil {
		return transform.Compute(m.src.Mapping, m.imageSize, m.canvas.Size())
	}
	bounds := geom.EmptyAABB()
	for _, b := range m.eng.Bodies() {
		bounds = bounds.Union(b.AABB())
	}
	return transform.FitToBounds(bounds, m.canvas.Size(), 4)
}

func (m Model) View() string {
	m.canvas.Clear()
	m.canvas.DrawScene(m.eng, m.src.Constraints, m.currentTransform())
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.sceneName)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.ropeHist) > 1 {
		chart := asciigraph.Plot(m.ropeHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("rope length error"))
		s.WriteString(m.styles.graph.Render(chart) + "\n\n")
	}

	s.WriteString(m.styles.label.Render("Time") + m.styles.value.Render(fmt.Sprintf("%.2fs", m.eng.Time())) + "\n")
	s.WriteString(m.styles.label.Render("Energy") + m.styles.value.Render(fmt.Sprintf("%.3f J", m.eng.Energy())) + "\n")
	s.WriteString(m.styles.label.Render("Rope error") + m.styles.value.Render(fmt.Sprintf("%.2e m", m.eng.RopeError())) + "\n")
	framing := "image mapping"
	if m.useFit || m.src.Mapping == nil {
		framing = "fit to bodies"
	}
	s.WriteString(m.styles.label.Render("Framing") + m.styles.value.Render(framing) + "\n")

	s.WriteString("\nBODIES\n")
	for _, b := range m.eng.Bodies() {
		p := b.Position()
		s.WriteString(m.styles.label.Render(b.ID) + m.styles.value.Render(fmt.Sprintf("(%.2f, %.2f) m", p.X, p.Y)) + "\n")
	}

	if warnings := m.eng.Warnings(); len(warnings) > 0 {
		s.WriteString("\n")
		for _, w := range warnings {
			s.WriteString(m.styles.warn.Render("! "+w) + "\n")
		}
	}

	s.WriteString(m.styles.help.Render("SP:Pause R:Reset F:Framing T:Theme Q:Quit"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.stats.Render(s.String()))
}

package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/netdyn/internal/dynamo"
	"github.com/san-kum/netdyn/internal/integrators"
	"github.com/san-kum/netdyn/internal/metrics"
	"github.com/san-kum/netdyn/internal/network"
)

const (
	width           = 40
	height          = 16
	historyCapacity = 600
	frameRate       = 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	labelStyle  = MetricLabel.Width(12)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps an assembled network on every frame and draws it. Phase
// networks are shown as dots on the unit circle, everything else as one bar
// per vertex.
type Model struct {
	sys        *network.System
	integrator integrators.Integrator
	name       string

	state, initial dynamo.State
	t, dt          float64
	stepsPerFrame  int

	phases  []int
	symbols []string
	tracked int // -1 tracks the order parameter or the mean
	series  []float64

	canvas   *Canvas
	running  bool
	showHelp bool
	err      error
}

// NewModel prepares a live view. phases may be nil.
func NewModel(sys *network.System, integ integrators.Integrator, x0 dynamo.State, dt float64, stepsPerFrame int, name string, phases []int) Model {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	return Model{
		sys:           sys,
		integrator:    integ,
		name:          name,
		state:         x0.Clone(),
		initial:       x0.Clone(),
		dt:            dt,
		stepsPerFrame: stepsPerFrame,
		phases:        phases,
		symbols:       sys.Symbols(),
		tracked:       -1,
		series:        make([]float64, 0, historyCapacity),
		canvas:        NewCanvas(width, height),
		running:       true,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "tab":
			m.tracked++
			if m.tracked >= len(m.symbols) {
				m.tracked = -1
			}
			m.series = m.series[:0]
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one frame's worth of steps and records the tracked value.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.integrator.Step(m.sys, m.state, nil, m.t, m.dt); err != nil {
			m.fail(err)
			return
		}
		m.t += m.dt
	}
	if !m.state.IsValid() {
		m.fail(dynamo.ErrInvalidState)
		return
	}

	m.series = append(m.series, m.trackedValue())
	if len(m.series) > historyCapacity {
		m.series = m.series[1:]
	}
}

func (m *Model) fail(err error) {
	m.err = err
	m.running = false
}

func (m *Model) reset() {
	m.state = m.initial.Clone()
	m.t = 0
	m.series = m.series[:0]
	m.err = nil
	m.running = true
}

func (m Model) trackedValue() float64 {
	if m.tracked >= 0 {
		return m.state[m.tracked]
	}
	if len(m.phases) > 0 {
		return metrics.Coherence(m.state, m.phases)
	}
	if len(m.state) == 0 {
		return 0
	}
	return m.state.Sum() / float64(len(m.state))
}

func (m Model) trackedName() string {
	switch {
	case m.tracked >= 0:
		return m.symbols[m.tracked]
	case len(m.phases) > 0:
		return "order parameter"
	default:
		return "mean"
	}
}

func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusFailed.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.series) > 1 {
		chart := asciigraph.Plot(m.series, asciigraph.Height(6), asciigraph.Width(30), asciigraph.Caption(m.trackedName()))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2f", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Vertices") + MetricValue.Render(fmt.Sprint(m.sys.NumVertices())) + "\n")
	s.WriteString(labelStyle.Render("Edges") + MetricValue.Render(fmt.Sprint(m.sys.NumEdges())) + "\n")
	s.WriteString(labelStyle.Render("State dim") + MetricValue.Render(fmt.Sprint(m.sys.StateDim())) + "\n")
	if len(m.phases) > 0 {
		r := metrics.Coherence(m.state, m.phases)
		s.WriteString(labelStyle.Render("Coherence") + ProgressBar(r, 20) + MetricValue.Render(fmt.Sprintf(" %.3f", r)) + "\n")
	}
	s.WriteString(labelStyle.Render("Tracking") + Selected.Render(m.trackedName()) + "\n")
	s.WriteString(labelStyle.Render("History") + SparklineChart(m.series, 30) + "\n")

	s.WriteString(KeyHint.Render("\nSPACE:pause R:reset TAB:track Q:quit ?:help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		help := Panel.Render(strings.Join([]string{
			Title.Render("Keys"),
			"space  pause or resume",
			"r      restart from the initial state",
			"tab    cycle the charted component",
			"q      quit",
		}, "\n"))
		return help + "\n" + main
	}
	return main
}

func (m *Model) draw() {
	m.canvas.Clear()
	if len(m.phases) > 0 {
		m.drawPhases()
		return
	}
	m.drawBars()
}

func (m *Model) drawPhases() {
	cx, cy := width, height*2
	r := height*2 - 2
	m.canvas.DrawCircle(cx, cy, r)
	for _, k := range m.phases {
		theta := m.state[k]
		m.canvas.DrawDot(cx+int(math.Round(float64(r)*math.Cos(theta))), cy-int(math.Round(float64(r)*math.Sin(theta))))
	}
}

// drawBars shows the first component of every vertex, scaled to the largest
// magnitude present.
func (m *Model) drawBars() {
	n := m.sys.NumVertices()
	if n == 0 {
		return
	}
	scale := 0.0
	for i := 0; i < n; i++ {
		scale = math.Max(scale, math.Abs(m.sys.VertexState(m.state, i)[0]))
	}
	if scale == 0 {
		scale = 1
	}

	cols, mid := width*2, height*2
	barWidth := max(cols/n, 1)
	m.canvas.DrawLine(0, mid, cols-1, mid)
	for i := 0; i < n && i*barWidth < cols; i++ {
		h := int(m.sys.VertexState(m.state, i)[0] / scale * float64(mid-1))
		x0 := i * barWidth
		for w := 0; w < barWidth-1 || w == 0; w++ {
			m.canvas.DrawLine(x0+w, mid, x0+w, mid-h)
		}
	}
}

// Time is the simulated time reached so far.
func (m Model) Time() float64 { return m.t }

// Err is the error that stopped the run, if any.
func (m Model) Err() error { return m.err }

// Run opens the live view on the terminal's alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

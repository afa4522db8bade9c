// natal-calc is an interactive terminal natal chart calculator.
// It walks through the birth data prompts, then renders the computed
// chart: ascendant, planetary placements, houses and aspects.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nmurthy/natalscope/internal/geo"
	"github.com/nmurthy/natalscope/pkg/ayanamsa"
	"github.com/nmurthy/natalscope/pkg/chart"
	"github.com/nmurthy/natalscope/pkg/config"
	"github.com/nmurthy/natalscope/pkg/ephemeris"
)

var configPath = flag.String("config", "configs/config.json", "Path to configuration file")

// Form fields, asked in order
const (
	fieldName = iota
	fieldDate
	fieldTime
	fieldCity
	fieldCountry
	fieldLatitude
	fieldLongitude
	fieldTimezone
	fieldHouseSystem
	fieldAyanamsa
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	"Name",
	"Birth date (YYYY-MM-DD)",
	"Birth time (HH:MM, blank for noon)",
	"City (blank to enter coordinates)",
	"Country",
	"Latitude (decimal degrees)",
	"Longitude (decimal degrees)",
	"Timezone (IANA, blank for geocoded/UTC)",
	"House system (whole_sign/equal_house/placidus)",
	"Ayanamsa (lahiri/krishnamurti)",
}

type state int

const (
	stateForm state = iota
	stateComputing
	stateResult
	stateError
)

type model struct {
	cfg      *config.Config
	charts   *chart.Service
	geocoder *geo.Client

	state  state
	field  int
	inputs [fieldCount]string
	buffer string
	result *chart.Chart
	place  string
	err    error
}

type chartMsg struct {
	chart *chart.Chart
	place string
	err   error
}

func (m model) Init() tea.Cmd {
	return nil
}

// nextField skips the prompts made redundant by earlier answers: the
// coordinate fields when a city was given, the country when it wasn't.
func (m model) nextField() int {
	next := m.field + 1
	for next < fieldCount {
		cityGiven := m.inputs[fieldCity] != ""
		if cityGiven && (next == fieldLatitude || next == fieldLongitude) {
			next++
			continue
		}
		if !cityGiven && next == fieldCountry {
			next++
			continue
		}
		break
	}
	return next
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}

		switch m.state {
		case stateForm:
			switch msg.String() {
			case "enter":
				m.inputs[m.field] = strings.TrimSpace(m.buffer)
				m.buffer = ""
				m.field = m.nextField()
				if m.field >= fieldCount {
					m.state = stateComputing
					return m, m.compute()
				}
			case "esc":
				return m, tea.Quit
			case "backspace":
				if len(m.buffer) > 0 {
					m.buffer = m.buffer[:len(m.buffer)-1]
				}
			default:
				if len(msg.String()) == 1 {
					m.buffer += msg.String()
				}
			}
		case stateResult, stateError:
			switch msg.String() {
			case "q", "esc", "enter":
				return m, tea.Quit
			case "n":
				m.state = stateForm
				m.field = 0
				m.buffer = ""
				m.inputs = [fieldCount]string{}
				m.result = nil
				m.err = nil
			}
		}

	case chartMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
		} else {
			m.result = msg.chart
			m.place = msg.place
			m.state = stateResult
		}
	}

	return m, nil
}

// compute geocodes the place if needed and runs the chart pipeline.
func (m model) compute() tea.Cmd {
	inputs := m.inputs
	return func() tea.Msg {
		req := chart.Request{
			Name:     inputs[fieldName],
			Date:     inputs[fieldDate],
			Time:     inputs[fieldTime],
			Timezone: inputs[fieldTimezone],
		}

		place := ""
		if inputs[fieldCity] != "" {
			query := inputs[fieldCity]
			if inputs[fieldCountry] != "" {
				query += ", " + inputs[fieldCountry]
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			loc, err := geo.RetryWithBackoff(ctx, geo.DefaultRetryConfig(), func() (*geo.Location, error) {
				return m.geocoder.Geocode(ctx, query)
			})
			if err != nil {
				return chartMsg{err: fmt.Errorf("geocoding %q: %w", query, err)}
			}

			req.Latitude = loc.Latitude
			req.Longitude = loc.Longitude
			if req.Timezone == "" {
				req.Timezone = loc.Timezone
			}
			place = loc.Formatted
		} else {
			lat, err := strconv.ParseFloat(inputs[fieldLatitude], 64)
			if err != nil {
				return chartMsg{err: fmt.Errorf("invalid latitude %q", inputs[fieldLatitude])}
			}
			lon, err := strconv.ParseFloat(inputs[fieldLongitude], 64)
			if err != nil {
				return chartMsg{err: fmt.Errorf("invalid longitude %q", inputs[fieldLongitude])}
			}
			req.Latitude = lat
			req.Longitude = lon
			place = fmt.Sprintf("%.4f, %.4f", lat, lon)
		}

		houseInput := inputs[fieldHouseSystem]
		if houseInput == "" {
			houseInput = m.cfg.Chart.HouseSystem
		}
		houseSystem, err := chart.ParseHouseSystem(houseInput)
		if err != nil {
			return chartMsg{err: err}
		}
		req.HouseSystem = houseSystem

		ayanInput := inputs[fieldAyanamsa]
		if ayanInput == "" {
			ayanInput = m.cfg.Chart.Ayanamsa
		}
		convention, err := ayanamsa.ParseConvention(ayanInput)
		if err != nil {
			return chartMsg{err: err}
		}
		req.Ayanamsa = convention

		c, err := m.charts.Compute(req)
		return chartMsg{chart: c, place: place, err: err}
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	retroStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("natalscope — sidereal natal chart calculator"))
	b.WriteString("\n\n")

	switch m.state {
	case stateForm:
		for f := 0; f < m.field; f++ {
			if m.inputs[f] == "" {
				continue
			}
			b.WriteString(answerStyle.Render(fmt.Sprintf("%s: %s", fieldPrompts[f], m.inputs[f])))
			b.WriteString("\n")
		}
		b.WriteString(promptStyle.Render(fieldPrompts[m.field] + ": "))
		b.WriteString(inputStyle.Render(m.buffer + "▌"))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: next · esc: quit"))

	case stateComputing:
		b.WriteString("Computing chart...\n")

	case stateError:
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("n: new chart · q: quit"))

	case stateResult:
		b.WriteString(m.renderChart())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("n: new chart · q: quit"))
	}

	b.WriteString("\n")
	return b.String()
}

func (m model) renderChart() string {
	c := m.result
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Natal chart for %s", c.BirthDetails.Name)))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s %s · %s · %s houses · %s ayanamsa %.4f°",
		c.BirthDetails.Date, c.BirthDetails.Time, m.place,
		c.HouseSystem, c.Ayanamsa.Type, c.Ayanamsa.Value)))
	b.WriteString("\n")
	if c.BirthDetails.TimezoneFallback {
		b.WriteString(errStyle.Render("Timezone not recognized, times treated as UTC"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(promptStyle.Render("Ascendant  "))
	b.WriteString(fmt.Sprintf("%-26s %s\n", c.Ascendant.Formatted, c.Ascendant.Nakshatra.Name))
	b.WriteString(subtleStyle.Render("  " + c.Ascendant.Description))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Planets"))
	b.WriteString("\n")
	for _, p := range c.Planets {
		name := fmt.Sprintf("%-9s", p.Name)
		line := fmt.Sprintf("%s %-26s house %-2d %s", name, p.Formatted, p.House, p.Nakshatra.Name)
		if p.Failed {
			b.WriteString(errStyle.Render(line))
		} else if p.Retrograde {
			b.WriteString(retroStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Houses"))
	b.WriteString("\n")
	for _, h := range c.Houses {
		b.WriteString(fmt.Sprintf("%2d  %-12s %s\n", h.Number, h.Sign, h.Formatted))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Aspects"))
	b.WriteString("\n")
	if len(c.Aspects) == 0 {
		b.WriteString(subtleStyle.Render("none within orb"))
		b.WriteString("\n")
	}
	for _, a := range c.Aspects {
		b.WriteString(fmt.Sprintf("%-9s %s %-9s orb %.1f° (%s)\n",
			a.Point1, a.Symbol, a.Point2, a.Orb, a.Nature))
	}

	return b.String()
}

func main() {
	flag.Parse()
	log.SetPrefix("natal-calc: ")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if m := cfg.Chart.AscendantMethod; m != "" && m != "spherical" {
		log.Fatalf("Unsupported ascendant method %q", m)
	}

	var provider ephemeris.Provider
	if cfg.Ephemeris.Provider == "jpl" {
		jpl, err := ephemeris.NewJPLProvider(cfg.Ephemeris.DEFilePath)
		if err != nil {
			log.Fatalf("Failed to open ephemeris file: %v", err)
		}
		defer jpl.Close()
		provider = jpl
	} else {
		log.Println("WARNING: using built-in ephemeris table, only reference dates are available")
		provider = ephemeris.NewTableProvider()
	}

	m := model{
		cfg:      cfg,
		charts:   chart.NewService(provider, ayanamsa.NewCalculator(nil)),
		geocoder: geo.NewClient(cfg.Geocoder),
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatalf("TUI failed: %v", err)
	}
}

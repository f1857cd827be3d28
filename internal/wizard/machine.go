// Package wizard implements the three step country, city and area
// provisioning flow. Transitions that call the workflow automation only move
// forward on a non-empty result; any failure leaves the state untouched.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"leadgen-dashboard/internal/metrics"
	"leadgen-dashboard/internal/models"
	wire "leadgen-dashboard/pkg/models"
)

var (
	ErrNoCountrySelected = errors.New("please select a country first")
	ErrNoCitySelected    = errors.New("please select a city first")
	ErrUnknownCity       = errors.New("city is not in the loaded list")
	ErrNoDataReceived    = errors.New("no data received from workflow")
	ErrWrongStep         = errors.New("operation not allowed at the current step")
	ErrBusy              = errors.New("another workflow request is in progress")
	ErrSuperseded        = errors.New("wizard was reset while the request was in flight")
	ErrNoKeywords        = errors.New("at least one keyword is required")
)

// Trigger starts the external population workflows.
type Trigger interface {
	PopulateCities(ctx context.Context, req wire.PopulateCitiesRequest) ([]models.City, error)
	PopulateAreas(ctx context.Context, req wire.PopulateAreasRequest) ([]models.Area, error)
	GenerateContextAreas(ctx context.Context, req wire.ContextAreasRequest) ([]models.Area, error)
}

// CityOptions tune a cities population run.
type CityOptions struct {
	ForceRefresh   bool
	TargetKeywords []string
}

type Option func(*Machine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithObserver registers a callback invoked with a snapshot after every change.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) { m.observer = fn }
}

// Machine is safe for concurrent use. At most one workflow call runs at a time.
type Machine struct {
	mu       sync.Mutex
	state    State
	gen      uint64
	trigger  Trigger
	now      func() time.Time
	observer func(State)
}

func New(trigger Trigger, opts ...Option) *Machine {
	m := &Machine{
		state:   initialState(),
		trigger: trigger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// SelectCountry records the country to populate. Allowed in step 1 only.
func (m *Machine) SelectCountry(country models.Country) (State, error) {
	m.mu.Lock()
	if m.state.CurrentStep != StepCountry {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, fmt.Errorf("select country: %w", ErrWrongStep)
	}
	m.state.SelectedCountry = &country
	snap := m.state.clone()
	m.mu.Unlock()

	m.notify(snap)
	return snap, nil
}

// InitializeCities triggers the cities workflow for the selected country and
// moves to step 2 when it returns at least one city. The returned State is the
// one the call produced, even if a later change has already replaced it.
func (m *Machine) InitializeCities(ctx context.Context, opts CityOptions) (State, error) {
	const op = "initialize_cities"

	m.mu.Lock()
	if m.state.SelectedCountry == nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, ErrNoCountrySelected)
	}
	if m.state.CurrentStep != StepCountry {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, ErrWrongStep)
	}
	gen, err := m.begin()
	if err != nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, err)
	}
	req := wire.PopulateCitiesRequest{
		CountryID:      m.state.SelectedCountry.ID,
		ForceRefresh:   opts.ForceRefresh,
		TargetKeywords: append([]string{}, opts.TargetKeywords...),
	}
	m.mu.Unlock()

	cities, callErr := m.trigger.PopulateCities(ctx, req)

	return m.finish(op, gen, callErr, len(cities), func(s *State) {
		start := m.now()
		s.Cities = cities
		s.CurrentStep = StepCities
		s.WorkflowStartTime = &start
	})
}

// SelectCity picks one of the loaded cities. Allowed in step 2 only.
func (m *Machine) SelectCity(cityID int64) (State, error) {
	m.mu.Lock()
	if m.state.CurrentStep != StepCities {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, fmt.Errorf("select city: %w", ErrWrongStep)
	}
	var found *models.City
	for i := range m.state.Cities {
		if m.state.Cities[i].ID == cityID {
			found = &m.state.Cities[i]
			break
		}
	}
	if found == nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, fmt.Errorf("select city %d: %w", cityID, ErrUnknownCity)
	}
	id := found.ID
	m.state.SelectedCityID = &id
	m.state.SelectedCityName = found.Name
	snap := m.state.clone()
	m.mu.Unlock()

	m.notify(snap)
	return snap, nil
}

// InitializeAreas triggers the areas workflow for the selected city and moves
// to step 3 when it returns at least one area.
func (m *Machine) InitializeAreas(ctx context.Context) (State, error) {
	const op = "initialize_areas"

	m.mu.Lock()
	if m.state.CurrentStep != StepCities {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, ErrWrongStep)
	}
	if m.state.SelectedCityID == nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, ErrNoCitySelected)
	}
	gen, err := m.begin()
	if err != nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, err)
	}
	req := wire.PopulateAreasRequest{CityID: *m.state.SelectedCityID}
	m.mu.Unlock()

	areas, callErr := m.trigger.PopulateAreas(ctx, req)

	return m.finish(op, gen, callErr, len(areas), func(s *State) {
		s.Areas = areas
		s.CurrentStep = StepAreas
	})
}

// CreateContextAreas asks for keyword-specific areas of the selected city and
// replaces the area list with them. The wizard stays in step 3.
func (m *Machine) CreateContextAreas(ctx context.Context, keywords []string) (State, error) {
	const op = "create_context_areas"

	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return m.reject(op, ErrNoKeywords)
	}

	m.mu.Lock()
	if m.state.CurrentStep != StepAreas {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, ErrWrongStep)
	}
	if m.state.SelectedCountry == nil || m.state.SelectedCityID == nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, ErrNoCitySelected)
	}
	gen, err := m.begin()
	if err != nil {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, m.fail(op, err)
	}
	cityID := *m.state.SelectedCityID
	req := wire.ContextAreasRequest{
		CountryName: m.state.SelectedCountry.Name,
		CountryID:   m.state.SelectedCountry.ID,
		CityName:    m.state.SelectedCityName,
		Keywords:    cleaned,
	}
	m.mu.Unlock()

	areas, callErr := m.trigger.GenerateContextAreas(ctx, req)
	for i := range areas {
		if areas[i].CityID == 0 {
			areas[i].CityID = cityID
		}
	}

	return m.finish(op, gen, callErr, len(areas), func(s *State) {
		s.Areas = areas
	})
}

// BackToCities returns from step 3 to step 2, keeping the loaded cities.
func (m *Machine) BackToCities() (State, error) {
	m.mu.Lock()
	if m.state.CurrentStep != StepAreas {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, fmt.Errorf("back to cities: %w", ErrWrongStep)
	}
	m.state.CurrentStep = StepCities
	snap := m.state.clone()
	m.mu.Unlock()

	m.notify(snap)
	return snap, nil
}

// Reset returns to step 1 with nothing selected. A workflow call still in
// flight is superseded and its result discarded.
func (m *Machine) Reset() State {
	m.mu.Lock()
	m.gen++
	m.state = initialState()
	snap := m.state.clone()
	m.mu.Unlock()

	metrics.WizardTransitions.WithLabelValues("reset", metrics.OutcomeSuccess).Inc()
	m.notify(snap)
	return snap
}

// begin marks a workflow call as in flight. Caller holds mu.
func (m *Machine) begin() (uint64, error) {
	if m.state.Busy {
		return 0, ErrBusy
	}
	m.state.Busy = true
	return m.gen, nil
}

// finish applies a workflow result if the call succeeded with data and the
// machine was not reset meanwhile. It returns the state as it stood right
// after the result was applied.
func (m *Machine) finish(op string, gen uint64, callErr error, n int, apply func(*State)) (State, error) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return m.reject(op, ErrSuperseded)
	}
	m.state.Busy = false

	var err error
	switch {
	case callErr != nil:
		err = callErr
	case n == 0:
		err = ErrNoDataReceived
	default:
		apply(&m.state)
	}
	snap := m.state.clone()
	m.mu.Unlock()

	m.notify(snap)
	if err != nil {
		return snap, m.fail(op, err)
	}
	metrics.WizardTransitions.WithLabelValues(op, metrics.OutcomeSuccess).Inc()
	return snap, nil
}

func (m *Machine) fail(op string, err error) error {
	metrics.WizardTransitions.WithLabelValues(op, metrics.OutcomeError).Inc()
	return fmt.Errorf("%s: %w", strings.ReplaceAll(op, "_", " "), err)
}

// reject fails a transition that never changed state. Caller must not hold mu.
func (m *Machine) reject(op string, err error) (State, error) {
	return m.Snapshot(), m.fail(op, err)
}

func (m *Machine) notify(s State) {
	if m.observer != nil {
		m.observer(s)
	}
}

package wizard

import (
	"time"

	"leadgen-dashboard/internal/models"
)

// Step is the wizard position: 1 country, 2 cities, 3 areas.
type Step int

const (
	StepCountry Step = 1
	StepCities  Step = 2
	StepAreas   Step = 3
)

// State is a snapshot of the provisioning wizard. Cities and Areas are always
// replaced as a whole.
type State struct {
	CurrentStep       Step            `json:"current_step"`
	SelectedCountry   *models.Country `json:"selected_country"`
	Cities            []models.City   `json:"cities"`
	SelectedCityID    *int64          `json:"selected_city_id"`
	SelectedCityName  string          `json:"selected_city_name"`
	Areas             []models.Area   `json:"areas"`
	WorkflowStartTime *time.Time      `json:"workflow_start_time"`
	Busy              bool            `json:"busy"`
}

func initialState() State {
	return State{
		CurrentStep: StepCountry,
		Cities:      []models.City{},
		Areas:       []models.Area{},
	}
}

func (s State) clone() State {
	out := s
	if s.SelectedCountry != nil {
		c := *s.SelectedCountry
		out.SelectedCountry = &c
	}
	if s.SelectedCityID != nil {
		id := *s.SelectedCityID
		out.SelectedCityID = &id
	}
	if s.WorkflowStartTime != nil {
		t := *s.WorkflowStartTime
		out.WorkflowStartTime = &t
	}
	out.Cities = append([]models.City{}, s.Cities...)
	out.Areas = append([]models.Area{}, s.Areas...)
	return out
}

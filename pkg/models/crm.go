package models

// NoteDetails is stored with note_added interactions
type NoteDetails struct {
	Note string `json:"note"`
}

// CallDetails is stored with call_made interactions
type CallDetails struct {
	Outcome         string `json:"outcome"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// EmailDetails is stored with email_sent interactions
type EmailDetails struct {
	To      string `json:"to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body,omitempty"`
}

// CreateInteractionRequest logs one CRM action against a business.
type CreateInteractionRequest struct {
	Action  string                 `json:"action" binding:"required,oneof=note_added call_made email_sent"`
	Details map[string]interface{} `json:"details"`
}

// UpdateBusinessRequest changes the CRM fields an operator is allowed to edit.
type UpdateBusinessRequest struct {
	Status        *string `json:"status"`
	ContactStatus *string `json:"contact_status"`
	Notes         *string `json:"notes"`
}

// LocationRequest creates or renames a country, city or area.
type LocationRequest struct {
	Name      string `json:"name" binding:"required"`
	ISOCode   string `json:"iso_code"`
	CountryID int64  `json:"country_id"`
	CityID    int64  `json:"city_id"`
}

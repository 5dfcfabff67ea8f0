package validation

// CreateTicketRequest is the payload for POST /tickets.
type CreateTicketRequest struct {
	Description string `json:"description" validate:"required"` // what broke
	Location    string `json:"location" validate:"required"`    // where it broke
	Reporter    string `json:"reporter" validate:"required"`    // who reported it
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`

	// ImageBase64 carries inline image bytes, optionally with the
	// data-URL prefix browsers prepend. Mutually exclusive with
	// AttachImage (enforced by struct-level validation).
	ImageBase64 string `json:"imageBase64,omitempty"`

	// AttachImage asks for a pre-signed upload URL instead of sending
	// bytes through this service.
	AttachImage bool `json:"attachImage,omitempty"`
}

// UpdateTicketRequest is the payload for PUT /tickets/:id.
type UpdateTicketRequest struct {
	State              string `json:"state" validate:"required,oneof=OPEN IN_PROGRESS COMPLETE"`
	AssignedTechnician string `json:"assignedTechnician,omitempty"`
}

// ListTicketsQuery binds the optional state filter on GET /tickets.
type ListTicketsQuery struct {
	State string `form:"state" validate:"omitempty,oneof=ALL OPEN IN_PROGRESS COMPLETE"`
}

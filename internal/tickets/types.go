package tickets

import "time"

// Ticket states, monotonically advancing.
const (
	StateOpen       = "OPEN"
	StateInProgress = "IN_PROGRESS"
	StateComplete   = "COMPLETE"
)

// Ticket priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Ticket is the item stored in the tickets DynamoDB table.
type Ticket struct {
	TicketID           string    `dynamodbav:"ticket_id" json:"ticketId"` // PK
	State              string    `dynamodbav:"state" json:"state"`        // OPEN | IN_PROGRESS | COMPLETE
	Description        string    `dynamodbav:"description" json:"description"`
	Location           string    `dynamodbav:"location" json:"location"`
	Reporter           string    `dynamodbav:"reporter" json:"reporter"`
	Priority           string    `dynamodbav:"priority" json:"priority"`
	ImageKey           string    `dynamodbav:"image_key,omitempty" json:"imageKey,omitempty"`
	AssignedTechnician string    `dynamodbav:"assigned_technician,omitempty" json:"assignedTechnician,omitempty"`
	CreatedAt          time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `dynamodbav:"updated_at" json:"updatedAt"`
	Version            int64     `dynamodbav:"version" json:"-"` // optimistic-lock counter

	// ImageURL is a short-lived read URL attached on list responses.
	// Never persisted.
	ImageURL string `dynamodbav:"-" json:"imageUrl,omitempty"`
}

// ValidTransition reports whether moving from -> to is a legal edge.
// Legal edges: OPEN -> IN_PROGRESS, IN_PROGRESS -> COMPLETE, OPEN -> COMPLETE.
func ValidTransition(from, to string) bool {
	switch from {
	case StateOpen:
		return to == StateInProgress || to == StateComplete
	case StateInProgress:
		return to == StateComplete
	default:
		return false
	}
}

// ValidState reports whether s names a known ticket state.
func ValidState(s string) bool {
	return s == StateOpen || s == StateInProgress || s == StateComplete
}

// ValidPriority reports whether p names a known priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// CompletionEvent is published to the notification topic when a ticket
// reaches COMPLETE.
type CompletionEvent struct {
	TicketID    string `json:"ticketId"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Reporter    string `json:"reporter"`
	Technician  string `json:"technician,omitempty"`
}

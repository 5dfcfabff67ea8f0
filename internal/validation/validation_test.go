package validation

import (
	"testing"
)

func TestCreateTicketRequest_Valid(t *testing.T) {
	v := New()

	req := CreateTicketRequest{
		Description: "Conveyor jam",
		Location:    "Bay 3",
		Reporter:    "op1",
		Priority:    "HIGH",
	}
	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCreateTicketRequest_MissingRequired(t *testing.T) {
	v := New()

	req := CreateTicketRequest{Description: "Conveyor jam"}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for missing location/reporter")
	}
}

func TestCreateTicketRequest_BadPriority(t *testing.T) {
	v := New()

	req := CreateTicketRequest{
		Description: "d",
		Location:    "l",
		Reporter:    "r",
		Priority:    "CRITICAL",
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for unknown priority")
	}
}

func TestCreateTicketRequest_ImagePathsExclusive(t *testing.T) {
	v := New()

	req := CreateTicketRequest{
		Description: "d",
		Location:    "l",
		Reporter:    "r",
		ImageBase64: "aGVsbG8=",
		AttachImage: true,
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected struct-level validation error for both image paths")
	}

	req.AttachImage = false
	if err := v.Struct(req); err != nil {
		t.Fatalf("inline image alone must be valid, got %v", err)
	}
}

func TestUpdateTicketRequest_States(t *testing.T) {
	v := New()

	for _, state := range []string{"OPEN", "IN_PROGRESS", "COMPLETE"} {
		if err := v.Struct(UpdateTicketRequest{State: state}); err != nil {
			t.Fatalf("state %s must be valid, got %v", state, err)
		}
	}
	if err := v.Struct(UpdateTicketRequest{State: "CANCELLED"}); err == nil {
		t.Fatal("expected validation error for unknown state")
	}
	if err := v.Struct(UpdateTicketRequest{}); err == nil {
		t.Fatal("expected validation error for missing state")
	}
}

func TestListTicketsQuery_Filter(t *testing.T) {
	v := New()

	for _, state := range []string{"", "ALL", "OPEN", "IN_PROGRESS", "COMPLETE"} {
		if err := v.Struct(ListTicketsQuery{State: state}); err != nil {
			t.Fatalf("filter %q must be valid, got %v", state, err)
		}
	}
	if err := v.Struct(ListTicketsQuery{State: "DONE"}); err == nil {
		t.Fatal("expected validation error for unknown filter")
	}
}

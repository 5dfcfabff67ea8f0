package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for CreateTicketRequest to ensure
	// a caller picks at most one image path.
	v.RegisterStructValidation(createTicketStructValidation, CreateTicketRequest{})

	return v
}

// createTicketStructValidation rejects requests that both inline image
// bytes and ask for a deferred upload URL.
func createTicketStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateTicketRequest)

	if req.ImageBase64 != "" && req.AttachImage {
		sl.ReportError(req.AttachImage, "attachImage", "AttachImage", "image_path_exclusive",
			"imageBase64 and attachImage are mutually exclusive")
	}
}

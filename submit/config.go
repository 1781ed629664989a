package submit

import (
	"net/http"

	"github.com/nojima/httpform-go/page"
)

// Config parameterizes a form submit handler.
type Config struct {
	// Method is the HTTP method sent for every submission.
	Method string
	// FilenameField names the form field holding the target filename.
	FilenameField string
	// BodyField names the form field sent as the payload. Empty means
	// the request has no payload.
	BodyField string
	// ContentType is set on requests that carry a payload.
	ContentType string
	// OutputID addresses the element that shows the response text.
	OutputID string
	// ErrorMessage replaces the output text when the request fails.
	ErrorMessage string
}

// PostConfig uploads the body field as text/plain.
func PostConfig(outputID string) Config {
	return Config{
		Method:        http.MethodPost,
		FilenameField: "filename",
		BodyField:     "body",
		ContentType:   "text/plain",
		OutputID:      outputID,
		ErrorMessage:  "Error sending POST",
	}
}

// DeleteConfig removes the named file; no payload, no custom header.
func DeleteConfig(outputID string) Config {
	return Config{
		Method:        http.MethodDelete,
		FilenameField: "filename",
		OutputID:      outputID,
		ErrorMessage:  "Error sending DELETE",
	}
}

func ConfigFromForm(form page.FormSpec) Config {
	return Config{
		Method:        form.Method,
		FilenameField: form.FilenameField,
		BodyField:     form.BodyField,
		ContentType:   form.ContentType,
		OutputID:      form.Output,
		ErrorMessage:  form.ErrorMessage,
	}
}

package tap

import (
	"fmt"
	"strings"
)

// QueryOption adjusts the protocol parameters of a single query.
type QueryOption func(*queryConfig)

// queryConfig holds per-query parameter overrides.
type queryConfig struct {
	// maxRec overrides the client row limit; -1 means unset. Zero is a
	// legal value: MAXREC=0 asks for a metadata-only response.
	maxRec int

	runID string
}

// MaxRec overrides the row limit for this query only.
func MaxRec(n int) QueryOption {
	return func(q *queryConfig) {
		q.maxRec = n
	}
}

// RunID sets the request label the service records in its logs, replacing
// the generated one.
func RunID(id string) QueryOption {
	return func(q *queryConfig) {
		q.runID = id
	}
}

// FieldError represents a validation failure for a specific parameter.
type FieldError struct {
	Field   string // Parameter name (e.g., "QUERY", "MAXREC")
	Message string // Human-readable error message
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Message: message})
}

// AddError appends an existing FieldError.
func (e *ValidationErrors) AddError(err *FieldError) {
	e.Errors = append(e.Errors, err)
}

// HasErrors returns true if any errors were collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// validateQuery checks the query text and parameter overrides before
// anything goes on the wire.
func validateQuery(query string, q *queryConfig) error {
	var errs ValidationErrors

	if strings.TrimSpace(query) == "" {
		errs.Add("QUERY", "query text cannot be empty")
	}
	if q.maxRec < -1 {
		errs.Add("MAXREC", "row limit cannot be negative")
	}
	if strings.ContainsAny(q.runID, "\r\n") {
		errs.Add("RUNID", "run id cannot contain line breaks")
	}

	return errs.ToError()
}

package effects

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("effect_order", func(fl validator.FieldLevel) bool {
		o := fl.Field().Int()
		return o >= OrderFirst && o <= OrderThird
	})

	_ = validate.RegisterValidation("unit_interval", func(fl validator.FieldLevel) bool {
		v := fl.Field().Float()
		return v >= 0 && v <= 1
	})

	_ = validate.RegisterValidation("impact_range", func(fl validator.FieldLevel) bool {
		v := fl.Field().Int()
		return v >= -5 && v <= 5
	})

	_ = validate.RegisterValidation("domain", func(fl validator.FieldLevel) bool {
		return Domain(fl.Field().String()).IsValid()
	})

	_ = validate.RegisterValidation("nonempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// FieldError describes one violated invariant.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationError is returned when a value violates one or more invariants.
type ValidationError struct {
	Subject string
	Errors  []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

// Validate checks range and enum invariants of the node.
func (n Node) Validate() error {
	return validateStruct(fmt.Sprintf("effect %q", n.ID), n)
}

// Validate checks the edge's own fields. Endpoint existence is checked at
// assembly time by FilterEdges.
func (e Edge) Validate() error {
	return validateStruct(fmt.Sprintf("edge %s->%s", e.From, e.To), e)
}

// Validate checks the leap's fields.
func (l Leap) Validate() error {
	return validateStruct(fmt.Sprintf("leap %q", l.Trigger), l)
}

// Validate checks the FMEA factor ranges.
func (e FMEAEntry) Validate() error {
	return validateStruct(fmt.Sprintf("fmea entry %q", e.FailureMode), e)
}

// ValidateNodes validates every node and id uniqueness within the batch.
func ValidateNodes(nodes []Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		if seen[n.ID] {
			return &ValidationError{
				Subject: fmt.Sprintf("effect %q", n.ID),
				Errors:  []FieldError{{Field: "ID", Tag: "unique", Value: n.ID, Message: "ID must be unique within its batch"}},
			}
		}
		seen[n.ID] = true
	}
	return nil
}

func validateStruct(subject string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate %s: %w", subject, err)
	}

	out := &ValidationError{Subject: subject}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: formatFieldError(fe),
		})
	}
	return out
}

// formatFieldError creates a human-readable error message
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonempty":
		return fmt.Sprintf("%s is required", fe.Field())
	case "effect_order":
		return fmt.Sprintf("%s must be 1, 2 or 3 (got %v)", fe.Field(), fe.Value())
	case "unit_interval":
		return fmt.Sprintf("%s must be between 0 and 1 (got %v)", fe.Field(), fe.Value())
	case "impact_range":
		return fmt.Sprintf("%s must be between -5 and 5 (got %v)", fe.Field(), fe.Value())
	case "domain":
		return fmt.Sprintf("%s must be one of %v (got %q)", fe.Field(), Domains(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 10 (got %v)", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}

package domain

// ValidationResult is the uniform result shape returned by every validator
type ValidationResult struct {
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// NewValidationResult creates a valid result with empty lists
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
}

// AddError records an error and marks the result invalid
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// AddWarning records a warning
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddSuggestion records a suggestion
func (r *ValidationResult) AddSuggestion(msg string) {
	r.Suggestions = append(r.Suggestions, msg)
}

// Merge folds another result into this one
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	if !other.IsValid {
		r.IsValid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Suggestions = append(r.Suggestions, other.Suggestions...)
}

package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates the table cannot be used to build an entity.
	Breaking bool
}

func (e *ValidationError) Error() string {
	table := e.Table
	if table == "" {
		table = "<unnamed>"
	}
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the first error of the result, or nil.
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// HasBreakingChanges returns true if there are any breaking issues.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			if w.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	requirePrimaryKey bool
	allowDangling     bool
}

// RequirePrimaryKey reports tables without a primary key as errors instead
// of warnings.
func RequirePrimaryKey() ValidateOption {
	return func(c *validateConfig) {
		c.requirePrimaryKey = true
	}
}

// AllowDanglingReferences reports foreign keys referencing tables outside
// the validated set as warnings instead of errors. It is useful when only a
// subset of a schema was inspected.
func AllowDanglingReferences() ValidateOption {
	return func(c *validateConfig) {
		c.allowDangling = true
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return validateTable(t, cfg)
}

func validateTable(t *Table, cfg *validateConfig) *ValidationResult {
	result := &ValidationResult{}
	if t.Name == "" {
		result.Errors = append(result.Errors, &ValidationError{
			Message:  "table name should not be empty",
			Breaking: true,
		})
	}
	if len(t.Columns) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:    t.Name,
			Message:  "table has no columns",
			Breaking: true,
		})
	}

	// Check for duplicate column names
	colNames := make(map[string]bool)
	for _, c := range t.Columns {
		if c == nil || c.Name == "" {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  "column without a name",
				Breaking: true,
			})
			continue
		}
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Column:   c.Name,
				Message:  "duplicate column name",
				Breaking: true,
			})
		}
		colNames[c.Name] = true
	}

	// Check for primary key
	primary := 0
	for _, idx := range t.Indexes {
		if idx.Primary {
			primary++
		}
	}
	switch {
	case primary > 1:
		result.Errors = append(result.Errors, &ValidationError{
			Table:    t.Name,
			Message:  "table has more than one primary key",
			Breaking: true,
		})
	case primary == 0 && cfg.requirePrimaryKey:
		result.Errors = append(result.Errors, &ValidationError{
			Table:    t.Name,
			Message:  "table has no primary key",
			Breaking: true,
		})
	case primary == 0:
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}

	// Check for duplicate index names
	idxNames := make(map[string]bool)
	for _, idx := range t.Indexes {
		if idx.Name != "" && idxNames[idx.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("duplicate index name: %s", idx.Name),
			})
		}
		idxNames[idx.Name] = true

		// Check that index columns exist
		for _, col := range idx.Columns {
			if !colNames[col] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("index %q references non-existent column %q", idx.Name, col),
					Breaking: true,
				})
			}
		}
	}

	// Check foreign keys
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == "" {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  fmt.Sprintf("foreign key %q without a referenced table", fk.Symbol),
				Breaking: true,
			})
		}
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  fmt.Sprintf("foreign key %q has %d columns and %d referenced columns", fk.Symbol, len(fk.Columns), len(fk.RefColumns)),
				Breaking: true,
			})
		}
		for _, col := range fk.Columns {
			if !colNames[col] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("foreign key references non-existent column %q", col),
					Breaking: true,
				})
			}
		}
	}

	return result
}

// ValidateSchema validates all tables in a schema, including the tables and
// columns referenced by foreign keys.
func ValidateSchema(tables []*Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}

	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		if t == nil {
			result.Errors = append(result.Errors, &ValidationError{
				Message:  "nil table",
				Breaking: true,
			})
			continue
		}
		// Check for duplicate table names
		if _, ok := byName[t.Name]; ok && t.Name != "" {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  "duplicate table name",
				Breaking: true,
			})
		}
		byName[t.Name] = t

		tableResult := validateTable(t, cfg)
		result.Errors = append(result.Errors, tableResult.Errors...)
		result.Warnings = append(result.Warnings, tableResult.Warnings...)
	}

	// Validate foreign key references
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == "" {
				continue
			}
			ref, ok := byName[fk.RefTable]
			if !ok {
				err := &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable),
				}
				if cfg.allowDangling {
					result.Warnings = append(result.Warnings, err)
				} else {
					err.Breaking = true
					result.Errors = append(result.Errors, err)
				}
				continue
			}
			for _, col := range fk.RefColumns {
				if _, ok := ref.Column(col); !ok {
					result.Errors = append(result.Errors, &ValidationError{
						Table:    t.Name,
						Message:  fmt.Sprintf("foreign key references non-existent column %s.%s", fk.RefTable, col),
						Breaking: true,
					})
				}
			}
		}
	}

	return result
}

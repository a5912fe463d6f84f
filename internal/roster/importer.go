package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kingrea/sportsmeet/internal/meet"
)

// Mode selects how imported records combine with the synthetic roster.
type Mode string

const (
	// ModeSeed appends imported students to the synthetic roster.
	ModeSeed Mode = "seed"
	// ModeReplace builds the roster from imported students only.
	ModeReplace Mode = "replace"
)

// ParseMode maps a config value to a Mode. Empty means ModeSeed.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeSeed:
		return ModeSeed, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("roster: import mode must be %q or %q, got %q", ModeSeed, ModeReplace, value)
	}
}

// Record is one student as supplied by an external roster source.
type Record struct {
	Name   string `json:"name" validate:"required"`
	Grade  string `json:"grade" validate:"required,grade"`
	Class  string `json:"class" validate:"required,classlabel"`
	Gender string `json:"gender,omitempty" validate:"omitempty,gender"`
}

// RecordError explains why a record was not imported.
type RecordError struct {
	Index  int
	Record Record
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Record.Name, e.Err)
}

// ImportReport summarizes one import.
type ImportReport struct {
	Accepted   int
	Genderless int
	Rejected   []RecordError
}

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "grade", func(fl validator.FieldLevel) bool {
		_, ok := meet.ParseGrade(fl.Field().String())
		return ok
	})
	mustRegister(v, "classlabel", func(fl validator.FieldLevel) bool {
		_, _, ok := meet.ParseClassLabel(fl.Field().String())
		return ok
	})
	mustRegister(v, "gender", func(fl validator.FieldLevel) bool {
		_, ok := meet.ParseGender(fl.Field().String())
		return ok
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("roster: register %s validation: %v", tag, err))
	}
}

// Validate checks a record's fields and that its class belongs to its grade.
func (rec Record) Validate() error {
	rec.Name = strings.TrimSpace(rec.Name)
	if err := recordValidator.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			parts := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return errors.New(strings.Join(parts, "; "))
		}
		return err
	}
	grade, _ := meet.ParseGrade(rec.Grade)
	classGrade, _, _ := meet.ParseClassLabel(rec.Class)
	if classGrade != grade {
		return fmt.Errorf("class %s does not belong to grade %s", rec.Class, grade)
	}
	return nil
}

// Import appends every valid record to the roster. Records without a gender
// are kept but never match an eligibility query.
func (r *Roster) Import(records []Record) ImportReport {
	var report ImportReport
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			report.Rejected = append(report.Rejected, RecordError{Index: i, Record: rec, Err: err})
			continue
		}
		grade, number, _ := meet.ParseClassLabel(rec.Class)
		gender, ok := meet.ParseGender(rec.Gender)
		if !ok {
			report.Genderless++
		}
		r.add(grade, number, strings.TrimSpace(rec.Name), gender)
		report.Accepted++
	}
	return report
}

// LoadRecords reads roster records from a JSON file holding either a bare
// array or an object with a students array.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Students []Record `json:"students"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("roster: parse records %s: %w", path, err)
		}
		return envelope.Students, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("roster: parse records %s: %w", path, err)
	}
	return records, nil
}

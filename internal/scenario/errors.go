package scenario

import (
	"errors"
	"fmt"
)

// Orchestrator error codes.
const (
	ErrCodeUnknownScenario   = "UNKNOWN_SCENARIO"
	ErrCodeLoadInProgress    = "LOAD_IN_PROGRESS"
	ErrCodeScenarioRedefined = "SCENARIO_REDEFINED"
)

// Error is a typed orchestrator failure. Callers branch on Code rather
// than parsing messages.
type Error struct {
	Code     string
	Scenario string
	Message  string
}

func (e *Error) Error() string {
	if e.Scenario != "" {
		return fmt.Sprintf("[%s] scenario %q: %s", e.Code, e.Scenario, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsCode reports whether err is a scenario Error with the given code.
func IsCode(err error, code string) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

func errUnknown(name string) *Error {
	return &Error{Code: ErrCodeUnknownScenario, Scenario: name, Message: "not defined"}
}

func errLoadInProgress(name string) *Error {
	return &Error{Code: ErrCodeLoadInProgress, Scenario: name, Message: "another load is in progress"}
}

func errRedefined(name string) *Error {
	return &Error{Code: ErrCodeScenarioRedefined, Scenario: name, Message: "name already defined"}
}

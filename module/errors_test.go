package module

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := NewError("contacts", PhaseInitialize, errors.New("db unreachable"))
	assert.Equal(t, `module "contacts": initialize phase: db unreachable`, err.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("db unreachable")
	err := NewError("contacts", PhaseInitialize, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, fmt.Errorf("boot: %w", err), cause)
}

func TestError_IsMatchesModuleAndPhase(t *testing.T) {
	err := NewError("contacts", PhaseMigrate, errors.New("column exists"))

	assert.ErrorIs(t, err, &Error{Module: "contacts", Phase: PhaseMigrate})
	assert.NotErrorIs(t, err, &Error{Module: "contacts", Phase: PhaseInitialize})
	assert.NotErrorIs(t, err, &Error{Module: "deals", Phase: PhaseMigrate})
}

func TestErrorf(t *testing.T) {
	err := Errorf("deals", PhaseJobs, "queue %q not found", "billing")

	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "deals", merr.Module)
	assert.Equal(t, PhaseJobs, merr.Phase)
	assert.Contains(t, merr.Err.Error(), `queue "billing" not found`)
}

package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	svc := NewService(DefaultRoster())

	sess, err := svc.Authenticate("1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", sess.EmployeeID)
	assert.Equal(t, RoleManager, sess.Role)

	sess, err = svc.Authenticate("9999")
	require.NoError(t, err)
	assert.Equal(t, RoleDriver, sess.Role)

	_, err = svc.Authenticate("4321")
	assert.Error(t, err)

	_, err = svc.Authenticate("")
	assert.Error(t, err)
}

func TestPINNeverMarshalled(t *testing.T) {
	emp := Employee{ID: "1", Name: "Test", Role: RoleCashier, PIN: "0042"}

	data, err := json.Marshal(emp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "0042")
}

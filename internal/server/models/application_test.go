package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationFields_AllAddressable(t *testing.T) {
	require.Len(t, ApplicationFields, 25)

	a := &Application{}
	for _, name := range ApplicationFields {
		assert.True(t, IsApplicationField(name), name)
		if name == FieldFinalPercentage {
			assert.Nil(t, a.TextField(name))
			continue
		}
		assert.NotNil(t, a.TextField(name), "text field %q has no slot", name)
	}
}

func TestIsApplicationField_RejectsBookkeeping(t *testing.T) {
	for _, name := range []string{"id", "user_id", "created_at", "updated_at", "password", ""} {
		assert.False(t, IsApplicationField(name), name)
	}
}

func TestFieldSlotsAndValues_Aligned(t *testing.T) {
	jo := "Jo"
	pct := 92.5
	a := &Application{FirstName: &jo, FinalPercentage: &pct}

	values := a.FieldValues()
	slots := a.FieldSlots()
	require.Len(t, values, len(ApplicationFields))
	require.Len(t, slots, len(ApplicationFields))

	assert.Equal(t, &jo, values[0])
	assert.Equal(t, &pct, values[5])
	assert.Nil(t, values[1])

	fp, ok := slots[5].(**float64)
	require.True(t, ok)
	assert.Equal(t, 92.5, **fp)
}

func TestIsFileKind(t *testing.T) {
	assert.True(t, IsFileKind("transcript"))
	assert.True(t, IsFileKind("cv"))
	assert.True(t, IsFileKind("photo"))
	assert.False(t, IsFileKind("passport"))
	assert.False(t, IsFileKind(""))
}

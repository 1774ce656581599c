package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/lang"
)

func TestMessagesUseJSONNames(t *testing.T) {
	v, err := New(lang.MustNew())
	require.NoError(t, err)

	err = v.Struct(dto.AssignmentCreateRequest{Name: "ab"})
	require.Error(t, err)

	messages := v.Messages(err)
	require.Equal(t, "course_id is a required field", messages["course_id"])
	require.Equal(t, "name must be at least 3 characters in length", messages["name"])
}

func TestMessagesIgnoresOtherErrors(t *testing.T) {
	v, err := New(lang.MustNew())
	require.NoError(t, err)
	require.Nil(t, v.Messages(errors.New("boom")))
}

func TestStringsStillResolve(t *testing.T) {
	strings := lang.MustNew()
	_, err := New(strings)
	require.NoError(t, err)
	require.Equal(t, "Online text", strings.Component("assignsubmission_onlinetext", "pluginname"))
}

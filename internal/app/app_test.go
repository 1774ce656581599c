package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientName(t *testing.T) {
	require.Equal(t, "gema-assign", clientName("GEMA  Assign"))
	require.Equal(t, "", clientName("   "))
}

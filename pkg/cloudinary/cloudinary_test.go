package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLocationGroupsByAreaAndContext(t *testing.T) {
	folder, publicID := Location("gema/assign", "7-submission_files-3-lab-photo.png")
	require.Equal(t, "gema/assign/submission_files/7", folder)
	require.Equal(t, "3-lab-photo.png", publicID)
}

func TestLocationFallsBackForFreeFormNames(t *testing.T) {
	folder, publicID := Location("gema/assign", "notes.txt")
	require.Equal(t, "gema/assign", folder)
	require.Equal(t, "notes.txt", publicID)

	_, publicID = Location("", "???")
	require.Equal(t, "upload", publicID)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
)

func TestPluginCommandTree(t *testing.T) {
	cmd := pluginsCommand()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	require.ElementsMatch(t, []string{"list", "move", "hide", "show", "install"}, names)

	move, _, err := cmd.Find([]string{"move"})
	require.NoError(t, err)
	require.Error(t, move.Args(move, []string{"assignfeedback", "file"}))
}

func TestPrintPlugins(t *testing.T) {
	var buf bytes.Buffer
	printPlugins(&buf, "assignfeedback", []dto.PluginResponse{
		{Plugin: "comments", Name: "Feedback comments", Enabled: true, SortOrder: 0},
		{Plugin: "file", Name: "File feedback", Enabled: false, SortOrder: 1},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "assignfeedback", lines[0])
	require.Contains(t, lines[1], "PLUGIN")
	require.Contains(t, lines[2], "comments")
	require.Contains(t, lines[3], "false")
}

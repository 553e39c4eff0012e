// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luthersystems/subcheck/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuideCommand(t *testing.T) {
	cmd := GuideCommand()
	cmd.SetArgs([]string{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, docs.Guide, out.String())
	assert.Contains(t, out.String(), "# subcheck guide")
}

func TestGuideCommand_Width(t *testing.T) {
	cmd := GuideCommand()
	cmd.SetArgs([]string{"--width=40"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	for _, line := range strings.Split(out.String(), "\n") {
		assert.LessOrEqual(t, len(line), 40, line)
	}
	assert.Contains(t, out.String(), "`unanalyzed-assignment`.")
}

func TestGuideCommand_NarrowWidth(t *testing.T) {
	cmd := GuideCommand()
	cmd.SetArgs([]string{"--width=12"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	for _, line := range strings.Split(out.String(), "\n") {
		assert.LessOrEqual(t, len(line), 12, line)
	}
}

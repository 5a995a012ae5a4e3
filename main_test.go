package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecuteReportsErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"bad flag value":      {"--cpu-workers=abc"},
		"unknown flag":        {"--frobnicate"},
		"stray argument":      {"extra"},
		"invalid config":      {"--iterations=0"},
		"render bad size":     {"render", "--width=0"},
		"render unknown flag": {"render", "--nope"},
	} {
		t.Run(name, func(t *testing.T) {
			cmd := newRootCommand()
			cmd.SetArgs(args)
			cmd.SetOut(new(bytes.Buffer))

			var stderr bytes.Buffer
			err := execute(context.Background(), cmd, &stderr)
			assert.Error(t, err)
			assert.Contains(t, stderr.String(), "Error: "+err.Error())
		})
	}
}

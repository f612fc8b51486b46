package main

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := parseID("1790212345678901234")
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1790212345678901234), id)

	for _, raw := range []string{"", "abc", "0", "-5"} {
		_, err := parseID(raw)
		assert.Error(t, err, raw)
	}
}

func TestDateFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("start-date", "", "")

	got, err := dateFlag(cmd, "start-date")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cmd.Flags().Set("start-date", "2024-02-29"))
	got, err = dateFlag(cmd, "start-date")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, cmd.Flags().Set("start-date", "29/02/2024"))
	_, err = dateFlag(cmd, "start-date")
	assert.ErrorContains(t, err, "--start-date")
}

func TestCommandTreeRegistered(t *testing.T) {
	paths := [][]string{
		{"serve"},
		{"migrate"},
		{"billing", "run"},
		{"billing", "overdue"},
		{"payments", "allocate"},
		{"contracts", "terminate"},
		{"requests", "approve"},
		{"requests", "decline"},
		{"summary"},
	}
	for _, path := range paths {
		cmd, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestTerminateMessage(t *testing.T) {
	id := snowflake.ID(42)

	assert.Equal(t, "contract 42 terminated", terminateMessage(id, true, nil))
	assert.Equal(t, "contract 42 already ended", terminateMessage(id, false, nil))

	rejected := validation.New("end_date", validation.CodeDateOrder,
		"contract cannot be terminated on or before its start date")
	assert.Equal(t,
		"contract 42 not terminated: contract cannot be terminated on or before its start date",
		terminateMessage(id, false, rejected))

	assert.Empty(t, terminateMessage(id, false, errors.New("connection refused")))
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"serve", "recommend", "migrate", "history", "insights"}

	got := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "missing subcommand %s", name)
	}
}

func TestRecommendCmdFlags(t *testing.T) {
	for _, flag := range []string{"lat", "lng", "limit", "prefer", "context", "json"} {
		assert.NotNil(t, recommendCmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

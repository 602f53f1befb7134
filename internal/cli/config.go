package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/jason-s-yu/bussfix/internal/game"
)

// DefaultSimulateOptions returns flag defaults, taking BUSSFIX_PLAYERS,
// BUSSFIX_JOKERS and BUSSFIX_SEED from the environment when set.
func DefaultSimulateOptions() SimulateOptions {
	opts := SimulateOptions{
		Players:  strings.Split(getEnvOrDefault("BUSSFIX_PLAYERS", "Ann,Ben,Cid"), ","),
		Jokers:   game.MinJokers,
		Seed:     42,
		MaxTurns: 2000,
	}
	if n, err := strconv.Atoi(os.Getenv("BUSSFIX_JOKERS")); err == nil {
		opts.Jokers = n
	}
	if n, err := strconv.ParseUint(os.Getenv("BUSSFIX_SEED"), 10, 64); err == nil {
		opts.Seed = n
	}
	return opts
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fsyncprof/internal/prof"
)

// setupProfiling inspects the profiling flags and enables the corresponding
// profilers. It returns a cleanup function that is safe to call multiple
// times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	cpuProfile, err := cmd.Flags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := cmd.Flags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}

	session, err := prof.Start(cpuProfile, memProfile)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to write profile")
		}
	}, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/relief/pkg/logging"
	"github.com/AleutianAI/relief/services/elevation/builder"
	"github.com/AleutianAI/relief/services/elevation/config"
	"github.com/AleutianAI/relief/services/elevation/tiles"
)

// --- Global Command Variables ---
var (
	configPath   string
	elevationDir string
	concurrency  int

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "relief",
		Short: "A cli to add elevation-derived costing attributes to routing tiles",
		Long: `Relief is an offline batch tool that walks a routing tile store,
samples a digital elevation model along every edge shape, and writes
weighted grades, maximum slopes, and mean elevations back into the tiles.`,
		SilenceUsage: true,
	}

	buildCmd = &cobra.Command{
		Use:   "build [level/index...]",
		Short: "Run the elevation pass over the tile store",
		Long: `Build processes tiles in the configured tile store. With no
arguments every tile in the store is processed in randomized order;
otherwise only the tiles named as level/index arguments are processed.`,
		RunE: runBuild, // Defined in this file.
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml",
		"Path to the YAML configuration file")
	buildCmd.Flags().StringVar(&elevationDir, "elevation-dir", "",
		"Override the configured elevation raster directory")
	buildCmd.Flags().IntVar(&concurrency, "concurrency", -1,
		"Override the configured worker count (0 = one per CPU)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	}

	rootCmd.AddCommand(buildCmd)
}

// runBuild merges flag overrides into the loaded configuration, parses
// any explicit tile arguments, and runs the elevation pass.
func runBuild(cmd *cobra.Command, args []string) error {
	if elevationDir != "" {
		cfg.ElevationDir = elevationDir
	}
	if concurrency >= 0 {
		cfg.Concurrency = concurrency
	}

	logger, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "relief",
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logger.Close()

	var ids []tiles.ID
	for _, arg := range args {
		id, err := tiles.ParseID(arg)
		if err != nil {
			return fmt.Errorf("bad tile argument %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	return builder.Build(cmd.Context(), cfg, logger.Logger, ids)
}

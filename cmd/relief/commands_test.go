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
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores the package-level command state between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	prevPath, prevDir, prevConc, prevCfg := configPath, elevationDir, concurrency, cfg
	t.Cleanup(func() {
		configPath, elevationDir, concurrency, cfg = prevPath, prevDir, prevConc, prevCfg
	})
}

func TestBuildCommand(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		resetFlags(t)
		rootCmd.SetArgs([]string{"build", "--config", "/nope/config.yaml"})
		if err := rootCmd.Execute(); err == nil {
			t.Fatal("expected config load error")
		}
	})

	t.Run("skips when no elevation data", func(t *testing.T) {
		resetFlags(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		body := "tile_store_path: " + filepath.Join(dir, "tiles") + "\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		rootCmd.SetArgs([]string{"build", "--config", path})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	})

	t.Run("rejects bad tile argument", func(t *testing.T) {
		resetFlags(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		body := "tile_store_path: " + filepath.Join(dir, "tiles") + "\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		rootCmd.SetArgs([]string{"build", "--config", path, "not-a-tile"})
		if err := rootCmd.Execute(); err == nil {
			t.Fatal("expected tile argument error")
		}
	})
}

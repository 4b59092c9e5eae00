// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the entry point every subcommand attaches itself to in its
// own init().
var rootCmd = &cobra.Command{
	Use:   "hive",
	Short: "Hive is the centralized authorization service",
	Long:  `Hive resolves group membership, permissions and tags for the systems that rely on it.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

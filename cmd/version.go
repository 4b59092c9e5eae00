/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Get the application's version.",
	Long:  `Get the application's version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			version = fmt.Sprintf("%s (%s)", version, setting.Value)
			break
		}
	}

	return version
}

// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/datasektionen/hive/internal/config"
)

func newServeTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("dsn", "", "")
	cmd.Flags().String("listen-address", "", "")
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("secret-key", "", "")
	cmd.Flags().String("oidc-issuer", "", "")
	cmd.Flags().String("oidc-client-id", "", "")
	cmd.Flags().String("oidc-client-secret", "", "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("log-file", "", "")
	return cmd
}

func TestApplyFlagOverrides_UnsetFlagsLeaveEnvSourcedValuesInPlace(t *testing.T) {
	cmd := newServeTestCmd()
	specs := &config.EnvSpec{
		DSN:           "postgres://env",
		ListenAddress: "0.0.0.0",
		Port:          8080,
		LogLevel:      "error",
	}

	applyFlagOverrides(cmd, specs)

	if specs.DSN != "postgres://env" {
		t.Errorf("DSN = %q, want unchanged", specs.DSN)
	}
	if specs.ListenAddress != "0.0.0.0" {
		t.Errorf("ListenAddress = %q, want unchanged", specs.ListenAddress)
	}
	if specs.Port != 8080 {
		t.Errorf("Port = %d, want unchanged", specs.Port)
	}
	if specs.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want unchanged", specs.LogLevel)
	}
}

func TestApplyFlagOverrides_SetFlagsWinOverEnvSourcedValues(t *testing.T) {
	cmd := newServeTestCmd()
	_ = cmd.Flags().Set("dsn", "postgres://flag")
	_ = cmd.Flags().Set("listen-address", "127.0.0.1")
	_ = cmd.Flags().Set("port", "9090")
	_ = cmd.Flags().Set("secret-key", "deadbeef")
	_ = cmd.Flags().Set("oidc-issuer", "https://issuer.example")
	_ = cmd.Flags().Set("oidc-client-id", "client-id")
	_ = cmd.Flags().Set("oidc-client-secret", "client-secret")
	_ = cmd.Flags().Set("log-level", "debug")
	_ = cmd.Flags().Set("log-file", "/tmp/hive.log")

	specs := &config.EnvSpec{
		DSN:           "postgres://env",
		ListenAddress: "0.0.0.0",
		Port:          8080,
		LogLevel:      "error",
		LogFile:       "log.txt",
	}

	applyFlagOverrides(cmd, specs)

	if specs.DSN != "postgres://flag" {
		t.Errorf("DSN = %q, want postgres://flag", specs.DSN)
	}
	if specs.ListenAddress != "127.0.0.1" {
		t.Errorf("ListenAddress = %q, want 127.0.0.1", specs.ListenAddress)
	}
	if specs.Port != 9090 {
		t.Errorf("Port = %d, want 9090", specs.Port)
	}
	if specs.SecretKey != "deadbeef" {
		t.Errorf("SecretKey = %q, want deadbeef", specs.SecretKey)
	}
	if specs.OIDCIssuer != "https://issuer.example" {
		t.Errorf("OIDCIssuer = %q, want https://issuer.example", specs.OIDCIssuer)
	}
	if specs.OIDCClientID != "client-id" {
		t.Errorf("OIDCClientID = %q, want client-id", specs.OIDCClientID)
	}
	if specs.OIDCClientSecret != "client-secret" {
		t.Errorf("OIDCClientSecret = %q, want client-secret", specs.OIDCClientSecret)
	}
	if specs.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", specs.LogLevel)
	}
	if specs.LogFile != "/tmp/hive.log" {
		t.Errorf("LogFile = %q, want /tmp/hive.log", specs.LogFile)
	}
}

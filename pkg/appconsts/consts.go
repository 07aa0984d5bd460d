// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package appconsts

const (
	// Name is the name of the client binary. It is used in help messages, the
	// MCP implementation info sent during initialization and metric keys.
	Name = "fdaclient"

	// EnvPrefix is the prefix for environment variables read through viper.
	EnvPrefix = "FDACLIENT"
)

// Version is the version of the client. This is a variable so it can be set at
// build time using ldflags. The default value is "dev", which is used for local
// development builds.
var Version = "dev"

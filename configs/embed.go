// Package configs provides embedded configuration templates for rigcheck.
//
// Templates are embedded at build time so `rigcheck config init` works from
// source builds and binary releases alike. Edit the .yaml files in this
// directory and rebuild to change them.
package configs

import _ "embed"

// UserConfigTemplate is the template for the user configuration.
// Written by `rigcheck config init` to ~/.config/rigcheck/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// Package config loads consumer configuration from YAML files and
// environment variables.
//
// A config file declares the shared transport and discovery settings
// plus one block per consumed service. Load resolves the file, merges
// .env and process environment on top, and unmarshals into the File
// struct; Build then turns each consumer block into a validated
// consumer.Config and its address source.
package config

// Package config loads deployment settings written in CUE.
//
// A config file is unified with the embedded #Config schema, so omitted
// fields take schema defaults and unknown fields are rejected:
//
//	bounds: students: {min: 10, max: 12}
//	dataset: "data/exercise3.yaml"
//
// Relative paths are resolved against the directory holding the config file.
package config

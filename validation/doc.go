// Package validation provides struct validation for rpckit configuration.
//
// It wraps the validator library so config structs can declare constraints
// with struct tags:
//
//	type ConsumerSpec struct {
//	    Service string `mapstructure:"service" validate:"required"`
//	}
//	err := validation.Validate(spec)
package validation

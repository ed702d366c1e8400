// Package config defines the format-agnostic settings model for the
// application and the Loader interface that fills it from a concrete source.
//
// Settings start from Default, are overlaid by whatever a Loader finds, and
// finally by command-line flags. Validate runs once after all layers apply.
package config

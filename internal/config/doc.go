// Package config loads CLI settings with viper: defaults, then the stepwise.yaml file,
// then STEPWISE_* environment variables, then bound flags.
package config

// Package weather is a small forecast API used by the CLI, the examples and
// the end-to-end tests. Forecasts live in memory or in Redis.
package weather

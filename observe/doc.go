// Package observe provides the structured logger and the OpenTelemetry
// gate metrics used across the session middleware. Both have noop
// implementations so library consumers pay nothing unless they opt in.
package observe

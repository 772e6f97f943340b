// Package utils provides small formatting helpers shared by the HTTP API and
// the command line: timestamps, departure countdowns and distances.
package utils

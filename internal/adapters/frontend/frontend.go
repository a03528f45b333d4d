// Package frontend holds the ways a user reaches the analyzer: the popup web server,
// the SMTP content filter and the one-shot command line.
package frontend

// Frontend is a long running entry point started by the daemon
type Frontend interface {
	Start() error
	Stop() error
	Addr() string
}

// Package app provides the command logic of httplog.
// It builds the logging HTTP client from the configuration, sends the requests
// described on the command line and writes the responses to stdout or to a file.
package app

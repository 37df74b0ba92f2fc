// Package utils provides a collection of helper functions shared by the transport and the CLI,
// such as media type classification, charset decoding, header line parsing and file name handling.
package utils

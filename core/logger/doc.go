// Package logger is the structured event log of the shell: one JSON object
// per line describing logins, commands and failures, used to find bugs and
// see how the shell is used.
package logger

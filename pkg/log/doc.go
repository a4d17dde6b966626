/*
Package log provides structured logging built on zerolog.

A single global logger is configured once at startup via Init and consumed
through child-logger helpers that attach the domain fields used across the
codebase (component, tool, master bill number, request ID). Console output
is the default for local runs; JSON output is enabled for deployments.
*/
package log

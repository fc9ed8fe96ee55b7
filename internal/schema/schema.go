// Package schema provides the operating system layer shared by the other
// packages: thin wrappers around OS and Unix syscalls that are injected into
// handlers, the metadata recorded for filesystem items and the detection of
// the running platform.
package schema

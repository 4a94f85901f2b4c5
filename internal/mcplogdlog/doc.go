// Package mcplogdlog mirrors log records to a local mcplogd daemon in dev
// builds (-tags dev). Release builds leave the handler untouched.
package mcplogdlog

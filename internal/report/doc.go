// Package report renders the status report for a job's latest update: the
// subject line, the plain-text body used for notifications, and a Markdown
// variant that the CLI renders to the terminal with glamour.
package report

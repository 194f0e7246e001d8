// Package types defines the job and weekly-update records shared by the
// ledger, the variance engine and the reporting layers. They are plain data:
// nothing in this package computes variance.
package types

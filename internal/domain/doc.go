// Package domain contains the documents evalsample produces.
//
// This package sits next to the sampling core (pkg/stratify) and turns a
// [stratify.Sample] into the output document written to disk or returned
// over HTTP. It has no dependencies on infrastructure concerns (HTTP, file
// system, logging).
//
// # Entities
//
//   - [Document]: the sample file, with strata report and ordered instances
//   - [Summary]: the one-line run report printed after a run
//   - [Audit]: proportionality figures derived from the strata report
package domain

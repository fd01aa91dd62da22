// Package resultaggregator folds validated station tallies into national and
// per-level results. It never caches: every aggregate reads the current
// validity flags, so an invalidated tally drops out immediately.
package resultaggregator

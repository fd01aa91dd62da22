// Package stationlifecycle owns elections and polling stations: scheduling,
// the Planned/Running/Finished/Cancelled election machine, station opening,
// and the close procedure that freezes final counts and renders the minutes.
package stationlifecycle

// Package proximity contains the core domain types of the proximity alarm.
//
// It defines Sample (a single raw sensor reading and its near/far
// classification), Image (the picture identifiers the display knows about)
// and DisplayState (what the user currently sees).
package proximity

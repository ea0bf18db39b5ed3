// Package sound plays the notification sound when an alarm goes off.
//
// Every backend implements Player. Play resolves and plays the default
// notification sound once and returns any failure; callers decide whether
// to surface it.
package sound

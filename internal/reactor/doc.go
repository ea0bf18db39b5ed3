// Package reactor bridges proximity samples to the display and the alarm.
//
// Loop is the single execution context every display mutation runs on:
// sensor deliveries, countdown ticks and delayed actions are all posted to
// it as tasks. Reactor subscribes to a sensor source while active and, on
// every near sample, starts an alarm sequence made of a Countdown and a
// delayed action that plays the notification sound.
package reactor

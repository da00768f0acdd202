// Package daemon provides the background plumbing for tetratipd: watching
// the configuration file and handing validated reloads to the main loop.
package daemon

// Package dbus exposes the tooltip controller on the session bus so that
// scripts and other processes can show and hide tooltips.
package dbus

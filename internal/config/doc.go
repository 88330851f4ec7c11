// Package config manages mediakeep settings.
//
// Settings are persisted as a JSON file. Loading a path that does not
// exist returns DefaultSettings, so the tool runs out of the box:
//
//	settings, err := config.Load("/home/user/.config/mediakeep/settings.json")
//
// The settings cover the download directory, the free-space floor that
// gates new downloads, retention cleanup (period, patterns, worker
// bound), and daemon-mode options (sweep schedule, metrics listener).
package config

// Package log provides segqueue's structured logging facade and utilities.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by Go's
// standard library slog via a custom handler that writes through this
// package's own Formatter/Output pipeline rather than slog's built-in
// handlers, so every component logs through one Logger interface and never
// imports log/slog directly.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.WithComponent("actorhost")
//	l.Info("actor activated", log.Str("actor_id", "orders"))
//
// # Interop
//
// To integrate with libraries expecting *log.Logger (pebble's own internal
// logger, for example), use ToStdLogger or RedirectStdLog.
package log

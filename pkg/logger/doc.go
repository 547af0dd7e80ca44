// Package logger provides a structured logging interface for the Flickr archiver.
//
// It wraps the zerolog library to provide a clean API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("Archive run started")
//	logger.WithField("photo_id", id).Info("Photo archived")
//	logger.WithError(err).Error("Failed to download original")
package logger

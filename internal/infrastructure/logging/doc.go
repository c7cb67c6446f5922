// Package logging provides structured logging using uber/zap: JSON in
// production, colored console output in development.
//
// Tasks log on their own seven-level scale (FATAL, ERROR, WARNING, NOTICE,
// INFO, TRACE, DEBUG). Logger.Write folds it onto zap levels and records the
// original level in the plumber_level field. FATAL never exits the process.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Write(logging.LevelNotice, "pipe ready", zap.String("task", id))
package logging

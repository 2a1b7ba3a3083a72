// Package log contains the default fancy logger with its module subcomponents. It is used by all packages to log
// their messages.
//
// In order not to extort any specific logging package, the package wraps around the
// github.com/neuronlabs/uni-logger interfaces:
//	# LeveledLogger - basic leveled logger interface
//	# DebugLeveledLogger - leveled logger with the debug2 and debug3 levels
//
// The module loggers (NewModuleLogger) allow to set a different level or logger instance
// for some components, i.e. the repositories or the view sets.
package log

package log

import (
	"github.com/neuronlabs/uni-logger"
)

var modules = []*ModuleLogger{}

// ModuleLogger is the logger used for the specific modules.
// It prefixes each message with the module name and could have its own level.
type ModuleLogger struct {
	Name string

	currentLevel unilogger.Level
	levelSet     bool
}

// NewModuleLogger creates new module logger for given 'name' of the module.
func NewModuleLogger(name string) *ModuleLogger {
	m := &ModuleLogger{Name: name, currentLevel: currentLevel}
	modules = append(modules, m)
	return m
}

// Level gets the module logger level.
func (m *ModuleLogger) Level() unilogger.Level {
	return m.currentLevel
}

// SetLevel sets the moduleLogger level. The level is no longer changed by the package SetLevel.
func (m *ModuleLogger) SetLevel(level unilogger.Level) {
	m.levelSet = true
	m.setLevel(level)
}

func (m *ModuleLogger) setLevel(level unilogger.Level) {
	m.currentLevel = level
}

// Debug3f writes the formated debug3 log.
func (m *ModuleLogger) Debug3f(format string, args ...interface{}) {
	if !m.allowed(LDEBUG3) {
		return
	}
	Debug3f(m.name()+" "+format, args...)
}

// Debug2f writes the formated debug2 log.
func (m *ModuleLogger) Debug2f(format string, args ...interface{}) {
	if !m.allowed(LDEBUG2) {
		return
	}
	Debug2f(m.name()+" "+format, args...)
}

// Debugf writes the formated debug log.
func (m *ModuleLogger) Debugf(format string, args ...interface{}) {
	if !m.allowed(LDEBUG) {
		return
	}
	Debugf(m.name()+" "+format, args...)
}

// Infof writes the formated info log.
func (m *ModuleLogger) Infof(format string, args ...interface{}) {
	if !m.allowed(LINFO) {
		return
	}
	Infof(m.name()+" "+format, args...)
}

// Warningf writes the formated warning log.
func (m *ModuleLogger) Warningf(format string, args ...interface{}) {
	if !m.allowed(LWARNING) {
		return
	}
	Warningf(m.name()+" "+format, args...)
}

// Errorf writes the formated error log.
func (m *ModuleLogger) Errorf(format string, args ...interface{}) {
	if !m.allowed(LERROR) {
		return
	}
	Errorf(m.name()+" "+format, args...)
}

func (m *ModuleLogger) allowed(level unilogger.Level) bool {
	return m.currentLevel == LUNKNOWN || m.currentLevel <= level
}

func (m *ModuleLogger) name() string {
	return "[" + m.Name + "]"
}

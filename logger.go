package logfile

import "github.com/golang/glog"

// Logger is the logging surface used by Engine.
//
// Debugf output is expected to be cheap to discard; Warnf is used when an
// operation aborts and its partial output is removed.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// GlogLogger routes log calls to github.com/golang/glog. Debug messages are
// emitted at verbosity level 1 and therefore need -v=1 to show up.
type GlogLogger struct{}

func (GlogLogger) Debugf(format string, args ...any) { glog.V(1).Infof(format, args...) }
func (GlogLogger) Infof(format string, args ...any)  { glog.Infof(format, args...) }
func (GlogLogger) Warnf(format string, args ...any)  { glog.Warningf(format, args...) }
func (GlogLogger) Errorf(format string, args ...any) { glog.Errorf(format, args...) }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// DiscardLogger drops every message.
var DiscardLogger Logger = nopLogger{}

var _ Logger = GlogLogger{}

// Package logrus adapts a *logrus.Entry to cachepolicy.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/cachepolicy"
)

var _ cachepolicy.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "cachepolicy")}
}

func (l Logger) Debug(msg string, f cachepolicy.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f cachepolicy.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f cachepolicy.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f cachepolicy.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }

package logging

import (
	"github.com/sirupsen/logrus"
)

// CronLogger adapts a logrus logger to the cron.Logger interface.
type CronLogger struct {
	Log logrus.FieldLogger
}

// Info logs routine scheduler activity at debug level; cron is chatty.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.Log.WithFields(toFields(keysAndValues)).Debug("cron: " + msg)
}

// Error logs scheduler faults, including recovered job panics.
func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.Log.WithFields(toFields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

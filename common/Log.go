package common

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.Out = os.Stdout
	Log.Formatter = &logrus.JSONFormatter{}
	Log.SetLevel(logLevelFromEnv())
	Log.AddHook(&serviceFieldsHook{})
}

func logLevelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// serviceFieldsHook stamps the service identity on every log entry.
type serviceFieldsHook struct {
}

func (hook *serviceFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *serviceFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}

package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// appHook добавляет имя приложения в каждую запись
type appHook struct {
	app string
}

func (h appHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h appHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["app"]; !ok {
		entry.Data["app"] = h.app
	}
	return nil
}

// New создает JSON-логгер приложения; out == nil - вывод в stdout
func New(app, logLevel string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	if out == nil {
		out = os.Stdout
	}
	log.SetOutput(out)
	log.AddHook(appHook{app: app})

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}

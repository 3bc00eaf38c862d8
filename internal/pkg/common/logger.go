package common

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
)

func NewLogger(i do.Injector) (*logrus.Logger, error) {
	level := do.MustInvokeNamed[string](i, "log-level")

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(parsed)

	return logger, nil
}

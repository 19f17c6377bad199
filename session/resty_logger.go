package session

import (
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/juniofirstpay/httpsessions/logger"
)

// restyLogger routes resty's internal messages to the session logger.
type restyLogger struct {
	log *logger.Logger
}

var _ resty.Logger = restyLogger{}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

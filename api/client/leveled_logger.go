package client

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/buildbeaver/chatdl/common/logger"
)

const redacted = "REDACTED"

// tokenParamPattern matches a token query parameter embedded in free text, in raw or JSON-escaped form.
var tokenParamPattern = regexp.MustCompile(`(token=)[^&\s"'\\]*`)

type leveledLoggerWrapper struct {
	realLogger logger.Log
}

// NewLeveledLogger provides a LeveledLogger interface on top of the standard logging interface.
// This can be provided to retryableClient so that it can produce log messages at appropriate levels.
// Tokens carried in request URLs are redacted.
func NewLeveledLogger(realLogger logger.Log) retryablehttp.LeveledLogger {
	return &leveledLoggerWrapper{realLogger: realLogger}
}

func (l *leveledLoggerWrapper) Error(msg string, keysAndValues ...interface{}) {
	l.realLogger.Error(l.convertMsg(msg, keysAndValues))
}

func (l *leveledLoggerWrapper) Info(msg string, keysAndValues ...interface{}) {
	l.realLogger.Info(l.convertMsg(msg, keysAndValues))
}

func (l *leveledLoggerWrapper) Debug(msg string, keysAndValues ...interface{}) {
	l.realLogger.Debug(l.convertMsg(msg, keysAndValues))
}

func (l *leveledLoggerWrapper) Warn(msg string, keysAndValues ...interface{}) {
	l.realLogger.Warn(l.convertMsg(msg, keysAndValues))
}

func (l *leveledLoggerWrapper) convertMsg(msg string, keysAndValues []interface{}) string {
	values := make([]interface{}, len(keysAndValues))
	for i, v := range keysAndValues {
		switch u := v.(type) {
		case *url.URL:
			values[i] = redactURL(u)
		case url.URL:
			values[i] = redactURL(&u)
		case *url.Error:
			values[i] = redactURLError(u)
		default:
			values[i] = v
		}
	}
	return redactText(fmt.Sprintf("%s: %v", msg, values))
}

// redactURLError returns a copy of err whose URL has any token query parameter replaced.
func redactURLError(err *url.Error) error {
	if err == nil {
		return nil
	}
	c := *err
	if u, parseErr := url.Parse(err.URL); parseErr == nil {
		c.URL = redactURL(u)
	} else {
		c.URL = redactText(err.URL)
	}
	return &c
}

// redactText replaces the value of any token query parameter appearing in s.
func redactText(s string) string {
	return tokenParamPattern.ReplaceAllString(s, "${1}"+redacted)
}

// redactURL returns the URL as a string with any token query parameter replaced.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if _, ok := q["token"]; !ok {
		return u.String()
	}
	q.Set("token", redacted)
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}

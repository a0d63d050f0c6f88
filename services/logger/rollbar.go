package logsvc

import (
	"context"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

// RollbarLogger prints to a standard logger and reports every entry to Rollbar when enabled.
// Debug entries are only printed in debug mode.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close waits for the queued Rollbar items to be sent.
func (l RollbarLogger) Close() {
	rollbar.Close()
}

// rollbarArgs returns the arguments of a Rollbar item.
// args may hold errors, extras (map[string]interface{}) and a core.Identity, which becomes the item's person.
// The person travels in a context so that concurrent requests do not share it.
func rollbarArgs(msg string, args []interface{}) []interface{} {
	items := make([]interface{}, 0, len(args)+1)
	items = append(items, msg)
	var personSet bool
	for _, arg := range args {
		id, ok := arg.(core.Identity)
		if !ok {
			items = append(items, arg)
			continue
		}
		if !personSet && id.ID != "" {
			person := &rollbar.Person{Id: id.ID, Username: id.Email, Email: id.Email}
			items = append(items, rollbar.NewPersonContext(context.Background(), person))
			personSet = true
		}
	}
	return items
}

func (l RollbarLogger) log(level, msg string, args []interface{}) {
	rollbar.Log(level, rollbarArgs(msg, args)...)

	if level == rollbar.DEBUG && !l.debug {
		return
	}
	l.std.Printf("%s: %s", strings.ToUpper(level), msg)
	for _, arg := range args {
		if id, ok := arg.(core.Identity); ok {
			if id.ID != "" {
				l.std.Printf("\tuser: %s <%s>", id.ID, id.Email)
			}
			continue
		}
		l.std.Printf("\t%+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.ERR, msg, args)
}

// Fatal reports the entry, waits for Rollbar and exits.
func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}

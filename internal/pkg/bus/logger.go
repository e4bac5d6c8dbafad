package bus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// watermillZerologAdapter bridges Watermill's LoggerAdapter interface to
// the component's own zerolog logger, so bus internals show up in the
// same structured log stream as everything else.
type watermillZerologAdapter struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

func (a watermillZerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.withFieldsEvent(a.logger.Error(), fields).Err(err).Msg(msg)
}

func (a watermillZerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.withFieldsEvent(a.logger.Info(), fields).Msg(msg)
}

func (a watermillZerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.withFieldsEvent(a.logger.Debug(), fields).Msg(msg)
}

func (a watermillZerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.withFieldsEvent(a.logger.Trace(), fields).Msg(msg)
}

func (a watermillZerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	merged := a.fields
	if merged == nil {
		merged = watermill.LogFields{}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return watermillZerologAdapter{logger: a.logger, fields: merged}
}

func (a watermillZerologAdapter) withFieldsEvent(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	all := a.fields
	for k, v := range fields {
		if all == nil {
			all = watermill.LogFields{}
		}
		all[k] = v
	}
	for k, v := range all {
		ev = ev.Interface(k, v)
	}
	return ev
}

package sink

import (
	"errors"
	"fmt"

	"digital.vasic.contracts/pkg/config"
	"digital.vasic.contracts/pkg/logging"
)

// FromConfig builds the sink described by cfg. store and signal
// back the cache kind and may be nil otherwise.
func FromConfig(
	cfg config.SinkConfig,
	verbose bool,
	logger logging.Logger,
	store Store,
	signal func(key string),
) (Sink, error) {
	var sinks []Sink
	for _, kind := range cfg.Kinds {
		switch kind {
		case config.SinkConsole:
			sinks = append(sinks, NewConsoleSink(logger, verbose))
		case config.SinkRedis:
			sinks = append(sinks, DialRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel))
		case config.SinkWebSocket:
			sinks = append(sinks, NewWebSocketSink(cfg.WebSocketURL))
		case config.SinkHTTP:
			sinks = append(sinks, NewHTTPSink(cfg.HTTPURL, WithBearerToken(cfg.HTTPToken)))
		case config.SinkCache:
			if store == nil {
				closeAll(sinks)
				return nil, errors.New("cache sink needs a result cache")
			}
			sinks = append(sinks, NewCacheSink(store, signal))
		case config.SinkNone:
		default:
			closeAll(sinks)
			return nil, fmt.Errorf("unknown sink kind %q", kind)
		}
	}

	var s Sink
	switch len(sinks) {
	case 0:
		return Discard{}, nil
	case 1:
		s = sinks[0]
	default:
		s = NewMultiSink(sinks...)
	}
	if cfg.Fallback > 0 {
		s = NewFallbackSink(s, cfg.Fallback)
	}
	return s, nil
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}

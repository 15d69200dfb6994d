// Package logger builds the service's *slog.Logger.
//
// New takes functional options for the format (text or json), the minimum
// level, static attributes and context extractors. The resulting handler is
// wrapped by ContextHandler, which appends attributes pulled from the context
// (a request id, for example) on every record.
//
// Records never carry credential material: attributes whose key is one of the
// redacted keys ("secret", "code", "session_key", "provisioning_uri" by
// default) have their value replaced before the record reaches the output.
//
// Attribute helpers in attr.go keep key names consistent:
//
//	log.InfoContext(ctx, "session created",
//	    logger.UserID(userID),
//	    logger.Component("session"),
//	)
//	log.Warn("secret store unreadable", logger.Error(err))
//
// # Configuration
//
// Config is loaded from the environment (LOG_LEVEL, LOG_FORMAT, APP_ENV,
// APP_NAME) and turned into options with Config.Options:
//
//	var cfg logger.Config
//	_ = config.Load(&cfg)
//	log := logger.New(cfg.Options()...)
//	logger.SetAsDefault(log)
package logger

// Package logger provee el logger zap del servicio con scoping por contexto.
//
// Se inicializa una sola vez en main:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "audioserver"})
//	defer logger.Sync()
//
// Los middlewares HTTP inyectan un logger con request_id/method/path y, una vez
// autenticado el request, yandex_id. Controllers y services lo recuperan con From(ctx):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.CompleteLogin"))
//	log.Info("login completed", logger.YandexID(id))
//
// Nunca loguear tokens (propios o del provider) ni el client secret.
package logger

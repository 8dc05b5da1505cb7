// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Lo usan los tres binarios (CLI, dashboard y twin) y las capas internas:
// el cliente HTTP loguea cada llamada al API en debug, los loaders loguean
// las ramas que degradan y el twin loguea los requests que recibe.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// Con contexto (el middleware de logging inyecta request_id, method, path):
//
//	log := logger.From(ctx)
//	log.Info("workspace created", logger.WorkspaceID(id))
package logger

package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field es un alias para no importar zap en cada caller.
type Field = zap.Field

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// Endpoint es el path del API remoto (no el del dashboard).
func Endpoint(v string) zap.Field { return zap.String("endpoint", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - DOMINIO
// =================================================================================

func WorkspaceID(v string) zap.Field { return zap.String("workspace_id", v) }

func UserID(v string) zap.Field { return zap.String("user_id", v) }

func EmailID(v string) zap.Field { return zap.String("email_id", v) }

func ConfigurationID(v string) zap.Field { return zap.String("email_configuration_id", v) }

// Loader identifica la rama de un loader ("workspaces", "emails", ...).
func Loader(v string) zap.Field { return zap.String("loader", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

// Layer: "controller", "loader", "action", "store".
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int) zap.Field { return zap.Int("count", v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }

func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

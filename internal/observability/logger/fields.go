package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Route(v string) zap.Field           { return zap.String("route", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// DurationMs duración en milisegundos (formato que usan los dashboards).
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// ---- Dominio ----

// YandexID identifica al sujeto (subject id del provider).
func YandexID(v string) zap.Field { return zap.String("yandex_id", v) }

// TokenKind es "access" o "refresh".
func TokenKind(v string) zap.Field { return zap.String("token_kind", v) }

// Provider nombre del identity provider.
func Provider(v string) zap.Field { return zap.String("provider", v) }

// AudioID id de un archivo de audio.
func AudioID(v string) zap.Field { return zap.String("audio_id", v) }

// FilePath ruta de un archivo en el storage.
func FilePath(v string) zap.Field { return zap.String("file_path", v) }

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// ---- Genéricos ----

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }

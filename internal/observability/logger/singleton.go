package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.RWMutex
	instance *zap.Logger
)

// Init inicializa el logger global. Llamadas posteriores reemplazan la instancia
// (útil en tests); en runtime se llama una vez desde main.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	instance = l
	mu.Unlock()
}

// L retorna el logger global. Sin Init devuelve un logger dev/info.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	return L()
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// S retorna el SugaredLogger del global (printf-style, para los CLIs).
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Sync flushea buffers pendientes. Usar con defer en main.
func Sync() error {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l.Sync()
	}
	return nil
}

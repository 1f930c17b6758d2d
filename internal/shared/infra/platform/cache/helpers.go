package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// writeTimeout acota cada escritura para que una caché lenta no retrase la
// respuesta más de lo necesario.
const writeTimeout = 200 * time.Millisecond

// SetBestEffort guarda en caché sin propagar errores: un fallo sólo se registra.
// Es síncrono; cuando devuelve, no queda trabajo pendiente.
func SetBestEffort(ctx context.Context, cache Cache, key string, value interface{}, ttl int, log *zap.Logger) {
	if cache == nil {
		return
	}
	// Sin la cancelación de la petición: una escritura ya empezada se completa.
	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := cache.Set(cacheCtx, key, value, ttl); err != nil {
		log.Warn("Cache update failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

package domain

import "math"

const (
	DefaultMaxLimit = 25
	DefaultPage     = 1
	// Unlimited como maxLimit desactiva el tope: sin límite pedido se traen
	// todos los documentos.
	Unlimited = -1
)

// EffectiveLimit aplica el tope: maxLimit si no se pidió límite (0 o negativo)
// o si el pedido lo supera. Con maxLimit ilimitado y sin límite pedido el
// resultado es 0, es decir, sin tope.
func EffectiveLimit(limit, maxLimit int) int {
	if maxLimit < 0 {
		if limit < 0 {
			return 0
		}
		return limit
	}
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Skip calcula el desplazamiento. Una página menor que 1 cuenta como la 1. Si
// el producto no cabe en un int64 se satura a math.MaxInt64: la página queda
// vacía pero el desplazamiento nunca es negativo.
func Skip(page, limit int) int64 {
	if page < 1 || limit <= 0 {
		return 0
	}
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return int64(page-1) * int64(limit)
}

// ReportedLimit es el límite que ve el cliente. Si pidió uno, el efectivo. Si
// no, el tamaño real de página: el total cuando no hubo tope, o el menor entre
// total y tope.
func ReportedLimit(requested, effective int, total int64) int64 {
	if requested > 0 {
		return int64(effective)
	}
	if effective <= 0 || total < int64(effective) {
		return total
	}
	return int64(effective)
}

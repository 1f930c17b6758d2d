package events

import (
	"encoding/json"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"-"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
}

// NewIntegrationEvent serializa data dentro del sobre común.
func NewIntegrationEvent(eventType, key string, at time.Time, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{Type: eventType, Key: key, Timestamp: at, Data: raw}, nil
}

// PartitionKey agrupa en la misma partición los eventos con la misma clave.
func (e IntegrationEvent) PartitionKey() string { return e.Key }

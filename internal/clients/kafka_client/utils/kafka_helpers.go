package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

func SerializeToJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("[KafkaUtils] Failed to serialize JSON",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("[KafkaUtils] serialize: %w", err)
	}
	return data, nil
}

func DeserializeFromJSON[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("[KafkaUtils] Failed to deserialize JSON",
			slog.String("error", err.Error()))
		return v, fmt.Errorf("[KafkaUtils] deserialize: %w", err)
	}
	return v, nil
}

func HandleConsumerError(err error) {
	if err == nil {
		return
	}
	slog.Error("[KafkaUtils] Kafka Consumer Error",
		slog.String("error", err.Error()))
}

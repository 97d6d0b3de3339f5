package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecret читает секрет из файла /run/secrets/<name>.
// Если файла нет, пробует переменную окружения <NAME> (для локальной разработки).
func ReadSecret(name string) (string, error) {
	secretPath := "/run/secrets/" + name

	data, err := os.ReadFile(secretPath)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}

	if envVal := os.Getenv(strings.ToUpper(name)); envVal != "" {
		return envVal, nil
	}

	return "", fmt.Errorf("секрет '%s' не найден ни в %s, ни в переменных окружения: %w", name, secretPath, err)
}

// Чтение переменных окружения для конфигурации сервиса.
package config

import (
	"os"
	"strconv"
)

// Exist - возвращает true, если переменная key задана.
func Exist(key string) bool {
	_, exist := os.LookupEnv(key)
	return exist
}

// GetEnv - возвращает значение строковой переменной.
func GetEnv(key string) string {
	val, _ := os.LookupEnv(key)
	return val
}

// GetIntEnv - возвращает значение числовой переменной или ошибку разбора.
func GetIntEnv(key string) (int, error) {
	return strconv.Atoi(GetEnv(key))
}

// GetBoolEnv - возвращает значение логической переменной или ошибку разбора.
func GetBoolEnv(key string) (bool, error) {
	return strconv.ParseBool(GetEnv(key))
}

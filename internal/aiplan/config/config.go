// Управление конфигурацией сервиса экспорта из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (passwords, secrets) в логах.
//   - Значения по умолчанию и ограничение значений для параметров экспорта (таймаут, глубина, параллельность).
package config

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	policy "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-policy"
	sandbox "github.com/aisa-it/aiplan/docexport/internal/aiplan/render-sandbox"
)

const (
	defaultListenAddr       = ":8080"
	defaultMetricsAddr      = ":2112"
	defaultExportTimeout    = 30
	defaultMaxConcurrent    = 4
	defaultMaxDepth         = 256
	maxMaxDepth             = 1000
	defaultPageSize         = "A4"
	defaultMarginMM         = 15
	defaultArchiveRetention = 7
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URL"`

	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	ChromePath      string `env:"CHROME_PATH"`
	ChromeNoSandbox bool   `env:"CHROME_NO_SANDBOX"`

	ExportTimeoutSec    int    `env:"EXPORT_TIMEOUT_SEC"`
	ExportMaxConcurrent int    `env:"EXPORT_MAX_CONCURRENT"`
	ExportMaxDepth      int    `env:"EXPORT_MAX_DEPTH"`
	ExportPageSize      string `env:"EXPORT_PAGE_SIZE"`
	ExportMarginMM      int    `env:"EXPORT_MARGIN_MM"`

	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint   string `env:"AWS_S3_ENDPOINT_URL"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`
	AWSSSL        bool   `env:"AWS_S3_SSL"`

	ArchiveRetentionDays int `env:"EXPORT_ARCHIVE_RETENTION_DAYS"`
}

// ReadConfig загружает конфигурацию сервиса из переменных окружения.
// Незаданные параметры экспорта получают значения по умолчанию, выходящие за допустимые границы ограничиваются.
// Конфигурация читается один раз при старте и дальше не изменяется.
func ReadConfig() *Config {
	config := &Config{ArchiveRetentionDays: -1}

	envConfig("env", config)

	config.applyDefaults()

	return config
}

// Default - конфигурация со значениями по умолчанию, без чтения окружения.
func Default() *Config {
	config := &Config{ArchiveRetentionDays: -1}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = defaultMetricsAddr
	}

	if c.ExportTimeoutSec <= 0 {
		c.ExportTimeoutSec = defaultExportTimeout
	}

	if c.ExportMaxConcurrent <= 0 {
		c.ExportMaxConcurrent = defaultMaxConcurrent
	}

	if c.ExportMaxDepth <= 0 {
		c.ExportMaxDepth = defaultMaxDepth
	}
	if c.ExportMaxDepth > maxMaxDepth {
		c.ExportMaxDepth = maxMaxDepth
	}

	c.ExportPageSize = strings.ToUpper(strings.TrimSpace(c.ExportPageSize))
	if c.ExportPageSize != "A4" && c.ExportPageSize != "LETTER" {
		c.ExportPageSize = defaultPageSize
	}

	if c.ExportMarginMM <= 0 || c.ExportMarginMM > 50 {
		c.ExportMarginMM = defaultMarginMM
	}

	if c.ArchiveRetentionDays < 0 {
		c.ArchiveRetentionDays = defaultArchiveRetention
	}
}

// ExportTimeout - ограничение времени одного рендера во внешнем движке.
func (c *Config) ExportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutSec) * time.Second
}

// ArchiveEnabled - true, если задано объектное хранилище для архива экспортов.
func (c *Config) ArchiveEnabled() bool {
	return c.AWSEndpoint != "" && c.AWSBucketName != ""
}

// RenderPolicy - политика рендера с глубиной из EXPORT_MAX_DEPTH.
func (c *Config) RenderPolicy() *policy.Policy {
	return policy.Default().WithMaxDepth(c.ExportMaxDepth)
}

func (c *Config) PageSettings() sandbox.PageSettings {
	size, ok := sandbox.PageSizeByName(c.ExportPageSize)
	if !ok {
		size = sandbox.PageA4
	}
	return sandbox.PageSettings{Size: size, Margins: sandbox.UniformMargins(float64(c.ExportMarginMM))}
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure passwords in log
		if isSecretField(fName) {
			logValue = maskSecret(logValue)
		}

		var err error
		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			var n int
			if n, err = GetIntEnv(fEnvTag); err == nil {
				v.Field(i).SetInt(int64(n))
			}
		case bool:
			var b bool
			if b, err = GetBoolEnv(fEnvTag); err == nil {
				v.Field(i).SetBool(b)
			}
		}
		if err != nil {
			// Поле остается прежним, дальше применяется значение по умолчанию.
			slog.Warn("Invalid config value, using default",
				slog.String("key", typeParam.Name()+"."+fName),
				slog.String("env", fEnvTag),
				slog.String("value", logValue),
			)
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)
	}
}

func isSecretField(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "pass") ||
		strings.Contains(name, "secret") ||
		strings.Contains(name, "token") ||
		strings.Contains(name, "dsn") ||
		strings.Contains(name, "accesskey")
}

func maskSecret(value string) string {
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

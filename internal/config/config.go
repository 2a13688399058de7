package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio. Se carga una vez al arrancar
// y se pasa a los constructores; nadie vuelve a leer el entorno.
type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"5000"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	CORSOrigin     string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`

	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer  string        `env:"JWT_ISSUER" envDefault:"notekeeper"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"8760h"`
	AuthHeader string        `env:"AUTH_HEADER" envDefault:"auth-token"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
	Password   PasswordPolicy

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"10m"`
	LoginRateMax    int           `env:"LOGIN_RATE_MAX" envDefault:"10"`

	OTelEndpoint    string `env:"OTEL_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"notekeeper-api"`
}

// PasswordPolicy agrupa las reglas de entrada del registro.
type PasswordPolicy struct {
	MinHandleLength   int `env:"MIN_HANDLE_LENGTH" envDefault:"3"`
	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH" envDefault:"5"`
}

// DefaultPasswordPolicy replica los envDefault de arriba.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinHandleLength: 3, MinPasswordLength: 5}
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package service

type Config struct {
	// When DATABASE_URI is empty the process runs on the in-memory store,
	// which keeps local development working without Postgres.
	DatabaseUri             string   `envconfig:"DATABASE_URI"`
	DatabaseMaxConns        int      `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int      `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int      `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	SentryDSN               string   `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate  float64  `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	LogFilePath             string   `envconfig:"LOG_FILE_PATH"`
	JWTSecret               []byte   `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenExpiry    int      `envconfig:"JWT_ACCESS_EXPIRY" default:"86400"` // in seconds, default 24 hours
	Host                    string   `envconfig:"HOST" default:"localhost:4000"`
	Port                    int      `envconfig:"PORT" default:"4000"`
	CORSOrigins             []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	DefaultRateLimit        int      `envconfig:"DEFAULT_RATE_LIMIT" default:"50"`
	StrictRateLimit         int      `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit          int      `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus        bool     `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort          int      `envconfig:"PROMETHEUS_PORT" default:"9092"`
	MinPasswordEntropy      int      `envconfig:"MIN_PASSWORD_ENTROPY" default:"0"`
	MinPasswordLength       int      `envconfig:"MIN_PASSWORD_LENGTH" default:"8"`
	UploadLimitBytes        int64    `envconfig:"UPLOAD_LIMIT_BYTES" default:"5242880"` // 5 MiB
	SeedDemo                bool     `envconfig:"SEED_DEMO" default:"false"`
}

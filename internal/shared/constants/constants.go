package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Store backends for payment links and the confirmation ledger
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDatabase = "database"

	// HTTP Headers
	HeaderXRequestID = "X-Request-ID"
)

package secretstore

// Backend names accepted by Config.Backend.
const (
	BackendFile     = backendFile
	BackendRedis    = backendRedis
	BackendPostgres = backendPostgres
	BackendMongo    = backendMongo
)

// Config selects and configures the secret store backend.
type Config struct {
	Backend    string `env:"SECRET_STORE_BACKEND" envDefault:"file"`                  // file, redis, postgres or mongo
	Path       string `env:"SECRET_STORE_PATH" envDefault:"./data/secrets.enc"`       // FileStore data file
	KeyPath    string `env:"SECRET_STORE_KEY_PATH" envDefault:"./data/secrets.key"`   // master key, shared by every backend
	RedisKey   string `env:"SECRET_STORE_REDIS_KEY" envDefault:"otpgate:totp_secrets"`
	Collection string `env:"SECRET_STORE_MONGO_COLLECTION" envDefault:"totp_secrets"`

	BackupRecipient string `env:"SECRET_STORE_BACKUP_RECIPIENT"` // age X25519 public key
	BackupIdentity  string `env:"SECRET_STORE_BACKUP_IDENTITY"`  // age X25519 private key
}

package config

// Repository defines the repository connection configuration.
type Repository struct {
	// Driver is the name of the repository driver: 'memory' or one of the gorm dialects.
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite3 postgres mysql"`

	// DSN is the database connection string, not used by the 'memory' driver.
	DSN string `mapstructure:"dsn"`

	// LogMode enables the SQL statements logging.
	LogMode bool `mapstructure:"log_mode"`
}

package cmd

// Config carries everything the application reads from its environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// MaxOffersPerBroadcast caps how many couriers a single broadcast
	// targets, nearest first.
	MaxOffersPerBroadcast int
	// ScanBatchSize caps how many pending jobs one scanner tick picks up.
	ScanBatchSize int
	// ExpiryBatchSize caps how many overdue broadcasts one sweep processes.
	ExpiryBatchSize int
}

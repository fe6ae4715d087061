package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Budget for a single store load or upsert. Each store call gets this
	// deadline and one retry on transient failure before erroring out.
	QueryTimeoutSec uint `envconfig:"QUERY_TIMEOUT_SEC" default:"5"`

	// Static bearer token guarding the matching/admin API.
	AdminToken string `envconfig:"ADMIN_TOKEN"`

	// Verification event dispatch
	DispatchBuffer int `envconfig:"DISPATCH_BUFFER" default:"64"`

	// Postgres NOTIFY channel the verification triggers publish to.
	ListenChannel string `envconfig:"LISTEN_CHANNEL" default:"profile_verified"`

	// Notification retry worker
	NotifyRetryMax      int  `envconfig:"NOTIFY_RETRY_MAX" default:"3"`
	NotifyRetryDelaySec uint `envconfig:"NOTIFY_RETRY_DELAY_SEC" default:"30"`
}

package models

// MConfig Structure
type MConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	ZmqBind string `yaml:"zmq_bind"`
	McpHost string `yaml:"mcp_host"`
	McpPort int    `yaml:"mcp_port"`

	// Shared secret for the admin update trigger. Empty disables the endpoint.
	AdminSecret string `yaml:"admin_secret"`

	Upstream  MUpstreamConfig  `yaml:"upstream"`
	Cache     MCacheConfig     `yaml:"cache"`
	RateLimit MRateLimitConfig `yaml:"rate_limit"`
	Snapshot  MSnapshotConfig  `yaml:"snapshot"`
	Calendar  MCalendarConfig  `yaml:"calendar"`
}

type MUpstreamConfig struct {
	BaseURL            string `yaml:"base_url"`
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	UserAgent          string `yaml:"user_agent"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

type MCacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

type MRateLimitConfig struct {
	WindowSeconds    int            `yaml:"window_seconds"`
	Limits           map[string]int `yaml:"limits"`
	ClientThreshold  int            `yaml:"client_threshold"`
	IdleSweepSeconds int            `yaml:"idle_sweep_seconds"`
}

type MSnapshotConfig struct {
	Path           string `yaml:"path"`
	UpdaterBaseURL string `yaml:"updater_base_url"`
	UpdaterTimeout int    `yaml:"updater_timeout"`
}

type MCalendarConfig struct {
	// MIC is an ISO 10383 market identifier resolvable by scmhub/calendar.
	// Empty means the exchange has no library calendar and the NEPSE
	// session fallback applies.
	MIC      string `yaml:"mic"`
	Timezone string `yaml:"timezone"`
}

package config

const (
	defaultCheckpointDir         = "~/.local/share/samplegraph/checkpoint"
	defaultLockDir               = "~/.local/share/samplegraph/locks"
	defaultLogDir                = "~/.local/share/samplegraph/logs"
	defaultReportDir             = "~/.local/share/samplegraph/reports"
	defaultFreesoundBaseURL      = "https://freesound.org/apiv2"
	defaultFreesoundPageSize     = 150
	defaultFreesoundRPM          = 50
	defaultFreesoundTimeout      = 30
	defaultFetchBudget           = 20
	defaultScanResultMaxAge      = 120
	defaultStaleAfterDays        = 30
	defaultLockStaleAfterMinutes = 120
	defaultLockPollInterval      = 5
	defaultLockTimeout           = 300
	defaultStatusBaseURL         = "https://api.github.com/repos/samplegraph/samplegraph/actions"
	defaultStatusCacheTTL        = 30
	defaultConflictPollInterval  = 30
	defaultConflictWaitTimeout   = 600
	defaultStatusRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CheckpointDir: defaultCheckpointDir,
			LockDir:       defaultLockDir,
			LogDir:        defaultLogDir,
			ReportDir:     defaultReportDir,
		},
		Freesound: Freesound{
			BaseURL:           defaultFreesoundBaseURL,
			PageSize:          defaultFreesoundPageSize,
			RequestsPerMinute: defaultFreesoundRPM,
			TimeoutSeconds:    defaultFreesoundTimeout,
		},
		Integrity: Integrity{
			FetchBudget:      defaultFetchBudget,
			ScanResultMaxAge: defaultScanResultMaxAge,
			StaleAfterDays:   defaultStaleAfterDays,
		},
		Lock: Lock{
			StaleAfterMinutes:   defaultLockStaleAfterMinutes,
			PollIntervalSeconds: defaultLockPollInterval,
			TimeoutSeconds:      defaultLockTimeout,
		},
		Workflows: Workflows{
			StatusBaseURL:       defaultStatusBaseURL,
			CacheTTLSeconds:     defaultStatusCacheTTL,
			PollIntervalSeconds: defaultConflictPollInterval,
			WaitTimeoutSeconds:  defaultConflictWaitTimeout,
			TimeoutSeconds:      defaultStatusRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

// Default returns the repository default configuration. Values here are
// deliberately conservative: a local engine, modest pacing delays, and
// skip-existing enabled so re-runs do not republish unchanged artifacts.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkflowsDir: "workflows",
			BackupDir:    "screenshots",
			ReportPath:   "screenshot-report.json",
		},
		Engine: Engine{
			URL:            "http://localhost:5678",
			TimeoutSeconds: 30,
		},
		GitHub: GitHub{
			Branch: "main",
		},
		Capture: Capture{
			ViewportWidth:        1920,
			ViewportHeight:       1080,
			ImageQuality:         100,
			SignalTimeoutSeconds: 10,
			SettleDelayMS:        3000,
		},
		Pipeline: Pipeline{
			PostImportDelayMS: 2000,
			InterItemDelayMS:  1000,
			BatchLimit:        0,
			SkipExisting:      true,
			SkipOnCheckError:  false,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

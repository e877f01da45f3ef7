package config

const (
	defaultAppRoot            = "~/.local/share/shelfarr"
	defaultLibraryDir         = "~/library"
	defaultDataDir            = "~/.local/share/shelfarr/data"
	defaultLogDir             = "~/.local/share/shelfarr/logs"
	defaultAPIBind            = "127.0.0.1:7878"
	defaultAPIReadTimeout     = 15
	defaultAPIWriteTimeout    = 30
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBLanguage       = "en-US"
	defaultGamesBaseURL       = "https://api.rawg.io/api"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultErrorRetryInterval = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AppRoot:    defaultAppRoot,
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		API: API{
			Bind:         defaultAPIBind,
			ReadTimeout:  defaultAPIReadTimeout,
			WriteTimeout: defaultAPIWriteTimeout,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Games: Games{
			BaseURL: defaultGamesBaseURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Workflow: Workflow{
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
	}
}

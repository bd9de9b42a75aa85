package config

const (
	defaultWorkDir          = "~/.local/share/sunweather/work"
	defaultLogDir           = "~/.local/share/sunweather/logs"
	defaultArchiveBaseURL   = "https://services.swpc.noaa.gov/images/animations/suvi/primary"
	defaultRequestTimeout   = 30
	defaultRetries          = 3
	defaultConcurrency      = 8
	defaultToleranceSeconds = 150
	defaultOutputPath       = "sunweather.mp4"
	defaultFPS              = 20
	defaultTileWidth        = 512
	defaultTileHeight       = 512
	defaultFFmpegBinary     = "ffmpeg"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Archive: Archive{
			BaseURL:        defaultArchiveBaseURL,
			RequestTimeout: defaultRequestTimeout,
			Retries:        defaultRetries,
			Concurrency:    defaultConcurrency,
		},
		Align: Align{
			ToleranceSeconds: defaultToleranceSeconds,
			Frames:           0, // 0 keeps every aligned frame
		},
		Output: Output{
			Path: defaultOutputPath,
			FPS:  defaultFPS,
		},
		Compose: Compose{
			TileWidth:  defaultTileWidth,
			TileHeight: defaultTileHeight,
		},
		Encode: Encode{
			FFmpegBinary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

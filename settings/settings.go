package settings

import (
	"os"

	"github.com/akmonengine/probe/collision"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/scene"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Settings contains everything that can be configured for a world.
type Settings struct {
	Query struct {
		// OverlapDedupThreshold is the overlap count from which duplicates
		// are searched through a map.
		OverlapDedupThreshold int
		// DefaultChannel is the channel the analyzer traces every object
		// type on, next to each recorded raycast and sweep.
		DefaultChannel string
		// TraceAsyncScene is the default of QueryParams.TraceAsyncScene.
		TraceAsyncScene bool
	}
	MTD struct {
		SmallInflation      float64
		LargeInflation      float64
		JitterDistance      float64
		MaxJitterAttempts   int
		MaxOverlapTriangles int
	}
	Scene struct {
		CellSize         float64
		NumCells         int
		Workers          int
		EnableAsyncScene bool
	}
	Log struct {
		Level string
	}
	Analyzer struct {
		// Record captures every query from startup.
		Record bool
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Query.OverlapDedupThreshold = collision.DefaultOverlapDedupThreshold
	s.Query.DefaultChannel = filter.WorldStatic.String()

	s.MTD.SmallInflation = collision.DefaultSmallInflation
	s.MTD.LargeInflation = collision.DefaultLargeInflation
	s.MTD.JitterDistance = collision.DefaultJitterDistance
	s.MTD.MaxJitterAttempts = collision.DefaultMaxJitterAttempts
	s.MTD.MaxOverlapTriangles = collision.DefaultMaxOverlapTriangles

	s.Scene.CellSize = scene.DefaultCellSize
	s.Scene.NumCells = scene.DefaultNumCells
	s.Scene.Workers = scene.DefaultWorkers
	s.Scene.EnableAsyncScene = true

	s.Log.Level = log.InfoLevel.String()
	return s
}

// SaveDefault will create and save the default settings file. If the file
// already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.Errorf("settings file %s already exists", path)
	}

	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return errors.Wrap(err, "failed encoding default settings")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed creating settings file")
	}
	return nil
}

// Load reads the settings file. Missing keys keep their default value.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "error reading settings")
	}

	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, errors.Wrap(err, "error decoding settings")
	}
	return s, nil
}

// CollisionConfig builds the conversion configuration
func (s Settings) CollisionConfig(logger log.FieldLogger) (*collision.Config, error) {
	channel, ok := filter.ParseChannel(s.Query.DefaultChannel)
	if !ok {
		return nil, errors.Errorf("unknown channel %q", s.Query.DefaultChannel)
	}

	cfg := collision.NewConfig()
	cfg.DefaultChannel = channel
	cfg.SetOverlapDedupThreshold(s.Query.OverlapDedupThreshold)
	cfg.MTD.SmallInflation = s.MTD.SmallInflation
	cfg.MTD.LargeInflation = s.MTD.LargeInflation
	cfg.MTD.JitterDistance = s.MTD.JitterDistance
	cfg.MTD.MaxJitterAttempts = s.MTD.MaxJitterAttempts
	cfg.MTD.MaxOverlapTriangles = s.MTD.MaxOverlapTriangles
	if logger != nil {
		cfg.Logger = logger
	}
	return cfg, nil
}

// SceneConfig builds the configuration of each physics scene
func (s Settings) SceneConfig(logger log.FieldLogger) scene.Config {
	return scene.Config{
		CellSize: s.Scene.CellSize,
		NumCells: s.Scene.NumCells,
		Workers:  s.Scene.Workers,
		Logger:   logger,
	}
}

// LogLevel parses the configured level
func (s Settings) LogLevel() (log.Level, error) {
	level, err := log.ParseLevel(s.Log.Level)
	if err != nil {
		return log.InfoLevel, errors.Wrap(err, "invalid log level")
	}
	return level, nil
}

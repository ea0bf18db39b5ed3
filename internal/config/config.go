package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the proximity-alarm binaries.
type Config struct {
	// ListenAddress is the gRPC address the reactor API listens on.
	ListenAddress string `yaml:"listen_addr"`
	// Timeout is the duration for RPC calls and broker connections.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum zap level ("debug", "info", ...).
	LogLevel string `yaml:"log_level"`
	// LogFile receives log output while the terminal UI owns the screen.
	LogFile string `yaml:"log_file"`
	// Sensor selects and configures the proximity source.
	Sensor SensorConfig `yaml:"sensor"`
	// Alarm configures the countdown and the delayed action.
	Alarm AlarmConfig `yaml:"alarm"`
	// Sound configures the notification sound backend.
	Sound SoundConfig `yaml:"sound"`
	// Display configures optional display sinks.
	Display DisplayConfig `yaml:"display"`
}

// SensorConfig describes where proximity samples come from.
type SensorConfig struct {
	// Source is one of the Source* constants.
	Source string `yaml:"source"`
	// Rate is the sampling-rate hint ("normal", "ui", "game", "fastest").
	Rate string `yaml:"rate"`
	// IIORoot is the sysfs directory holding IIO devices.
	IIORoot string `yaml:"iio_root"`
	// MQTT configures the broker source.
	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig holds broker connection parameters.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

// AlarmConfig holds the alarm sequence timings and overlap policy.
type AlarmConfig struct {
	// Duration is the total countdown length and the delay of the alarm action.
	Duration time.Duration `yaml:"duration"`
	// Tick is the countdown granularity.
	Tick time.Duration `yaml:"tick"`
	// Policy is PolicyOverlap or PolicyLatest.
	Policy string `yaml:"policy"`
}

// SoundConfig selects how the notification sound is played.
type SoundConfig struct {
	// Backend is one of the Sound* constants.
	Backend string `yaml:"backend"`
	// Command overrides the player executable for the command backend.
	Command string `yaml:"command"`
	// File overrides the default notification sound file.
	File string `yaml:"file"`
	// Ntfy configures the push-notification backend.
	Ntfy NtfyConfig `yaml:"ntfy"`
}

// NtfyConfig holds ntfy server parameters.
type NtfyConfig struct {
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	Title    string `yaml:"title"`
	Priority string `yaml:"priority"`
}

// DisplayConfig configures additional display sinks.
type DisplayConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig enables the Redis stream sink when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
	MaxLen   int64  `yaml:"max_len"`
}

// Sensor sources.
const (
	SourceIIO  = "iio"
	SourceMQTT = "mqtt"
	SourcePush = "push"
	SourceNone = "none"
)

// Alarm overlap policies.
const (
	PolicyOverlap = "overlap"
	PolicyLatest  = "latest"
)

// Sound backends.
const (
	SoundBell    = "bell"
	SoundCommand = "command"
	SoundNtfy    = "ntfy"
	SoundNone    = "none"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "proximity-alarm-settings.yaml"

	// DefaultListenAddress is where the reactor API listens by default.
	DefaultListenAddress = "127.0.0.1:50061"

	// DefaultLogFilename receives logs while the terminal UI runs.
	DefaultLogFilename = "proximity-alarm.log"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultAlarmDuration is the countdown length and the alarm delay.
	DefaultAlarmDuration = 10 * time.Second

	// DefaultAlarmTick is the countdown granularity.
	DefaultAlarmTick = time.Second

	// DefaultIIORoot is where Linux exposes industrial I/O devices.
	DefaultIIORoot = "/sys/bus/iio/devices"

	// DefaultMQTTTopic is the topic the MQTT source subscribes to.
	DefaultMQTTTopic = "sensors/proximity"

	// DefaultMQTTClientID identifies the reactor on the broker.
	DefaultMQTTClientID = "proximity-alarm"

	// DefaultRedisStream is the stream display revisions are appended to.
	DefaultRedisStream = "proximity:display"

	// DefaultRedisMaxLen caps the stream length.
	DefaultRedisMaxLen = 1000

	// DefaultNtfyURL is the public ntfy server.
	DefaultNtfyURL = "https://ntfy.sh"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownSource is returned for an unsupported sensor source.
	errUnknownSource = errors.New("unknown sensor source")
	// errUnknownRate is returned for an unsupported sampling rate.
	errUnknownRate = errors.New("unknown sampling rate")
	// errUnknownPolicy is returned for an unsupported alarm policy.
	errUnknownPolicy = errors.New("unknown alarm policy")
	// errUnknownSound is returned for an unsupported sound backend.
	errUnknownSound = errors.New("unknown sound backend")
	// errTickTooLong is returned when the tick exceeds the alarm duration.
	errTickTooLong = errors.New("alarm tick must not exceed alarm duration")
	// errMQTTBrokerRequired is returned when the MQTT source lacks a broker.
	errMQTTBrokerRequired = errors.New("mqtt broker must be provided")
	// errNtfyTopicRequired is returned when the ntfy backend lacks a topic.
	errNtfyTopicRequired = errors.New("ntfy topic must be provided")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults for an empty configuration.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default location yields Default().
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold broker credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
//
//nolint:cyclop,funlen // Flat list of independent checks.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ListenAddress == "" {
		settings.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	if settings.LogFile == "" {
		settings.LogFile = DefaultLogFilename
	}

	if err := validateSensor(&settings.Sensor); err != nil {
		return err
	}

	if err := validateAlarm(&settings.Alarm); err != nil {
		return err
	}

	if err := validateSound(&settings.Sound); err != nil {
		return err
	}

	redis := &settings.Display.Redis
	if redis.Stream == "" {
		redis.Stream = DefaultRedisStream
	}

	if redis.MaxLen <= 0 {
		redis.MaxLen = DefaultRedisMaxLen
	}

	return nil
}

// validateSensor checks the source and fills source-specific defaults.
func validateSensor(sensor *SensorConfig) error {
	sensor.Source = strings.ToLower(strings.TrimSpace(sensor.Source))
	if sensor.Source == "" {
		sensor.Source = SourceIIO
	}

	sensor.Rate = strings.ToLower(strings.TrimSpace(sensor.Rate))
	switch sensor.Rate {
	case "":
		sensor.Rate = "normal"
	case "normal", "ui", "game", "fastest":
	default:
		return fmt.Errorf("%w: %q", errUnknownRate, sensor.Rate)
	}

	if sensor.IIORoot == "" {
		sensor.IIORoot = DefaultIIORoot
	}

	if sensor.MQTT.Topic == "" {
		sensor.MQTT.Topic = DefaultMQTTTopic
	}

	if sensor.MQTT.ClientID == "" {
		sensor.MQTT.ClientID = DefaultMQTTClientID
	}

	switch sensor.Source {
	case SourceIIO, SourcePush, SourceNone:
		return nil
	case SourceMQTT:
		if sensor.MQTT.Broker == "" {
			return errMQTTBrokerRequired
		}

		if _, err := url.Parse(sensor.MQTT.Broker); err != nil {
			return fmt.Errorf("invalid mqtt broker: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownSource, sensor.Source)
	}
}

// validateAlarm fills the countdown timings and checks the policy.
func validateAlarm(alarm *AlarmConfig) error {
	if alarm.Duration <= 0 {
		alarm.Duration = DefaultAlarmDuration
	}

	if alarm.Tick <= 0 {
		alarm.Tick = DefaultAlarmTick
	}

	if alarm.Tick > alarm.Duration {
		return errTickTooLong
	}

	alarm.Policy = strings.ToLower(strings.TrimSpace(alarm.Policy))
	switch alarm.Policy {
	case "":
		alarm.Policy = PolicyOverlap
	case PolicyOverlap, PolicyLatest:
	default:
		return fmt.Errorf("%w: %q", errUnknownPolicy, alarm.Policy)
	}

	return nil
}

// validateSound checks the backend and its required parameters.
func validateSound(sound *SoundConfig) error {
	sound.Backend = strings.ToLower(strings.TrimSpace(sound.Backend))
	if sound.Backend == "" {
		sound.Backend = SoundCommand
	}

	if sound.Ntfy.URL == "" {
		sound.Ntfy.URL = DefaultNtfyURL
	}

	switch sound.Backend {
	case SoundBell, SoundCommand, SoundNone:
		return nil
	case SoundNtfy:
		if sound.Ntfy.Topic == "" {
			return errNtfyTopicRequired
		}

		if _, err := url.ParseRequestURI(sound.Ntfy.URL); err != nil {
			return fmt.Errorf("invalid ntfy url: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownSound, sound.Backend)
	}
}

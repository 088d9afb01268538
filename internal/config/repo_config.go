package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RepoConfigFile is the name of the JSON config file inside the .git directory
const RepoConfigFile = ".gitsnap_config"

// Config keys
const (
	KeyPush            = "push"
	KeyRemote          = "remote"
	KeyBranch          = "branch"
	KeySSHKeyPath      = "ssh.key_path"
	KeySSHPassphrase   = "ssh.passphrase"
	KeySSHUseAgent     = "ssh.use_agent"
	KeyMessageInitial  = "message.initial"
	KeyMessageFollowUp = "message.followup"
	KeyLogFile         = "log.file"
)

// FlagKeys maps command-line flag names to the config keys they override
var FlagKeys = map[string]string{
	"push":            KeyPush,
	"remote":          KeyRemote,
	"branch":          KeyBranch,
	"ssh-key":         KeySSHKeyPath,
	"ssh-agent":       KeySSHUseAgent,
	"message":         KeyMessageFollowUp,
	"initial-message": KeyMessageInitial,
	"log-file":        KeyLogFile,
}

// SSHConfig selects the credentials used for SSH remotes
type SSHConfig struct {
	KeyPath    string `mapstructure:"key_path"`
	Passphrase string `mapstructure:"passphrase"`
	UseAgent   bool   `mapstructure:"use_agent"`
}

// MessageConfig holds the commit messages
type MessageConfig struct {
	Initial  string `mapstructure:"initial"`
	FollowUp string `mapstructure:"followup"`
}

// LogConfig controls file logging
type LogConfig struct {
	File string `mapstructure:"file"`
}

// Config represents the resolved gitsnap settings
type Config struct {
	Push    bool          `mapstructure:"push"`
	Remote  string        `mapstructure:"remote"`
	Branch  string        `mapstructure:"branch"`
	SSH     SSHConfig     `mapstructure:"ssh"`
	Message MessageConfig `mapstructure:"message"`
	Log     LogConfig     `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPush, false)
	v.SetDefault(KeyRemote, "origin")
	v.SetDefault(KeyBranch, "")
	v.SetDefault(KeySSHKeyPath, "~/.ssh/id_rsa")
	v.SetDefault(KeySSHPassphrase, "")
	v.SetDefault(KeySSHUseAgent, false)
	v.SetDefault(KeyMessageInitial, "Initial Commit")
	v.SetDefault(KeyMessageFollowUp, "New Changes")
	v.SetDefault(KeyLogFile, "")
}

// newViperInstance creates a viper instance with defaults and GITSNAP_ env binding
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GITSNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// RepoConfigPath returns the path of the repository config file
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", RepoConfigFile)
}

// Load resolves settings for the repository at repoRoot.
// flags may be nil; only flags listed in FlagKeys are bound.
func Load(repoRoot string, flags *pflag.FlagSet) (*Config, error) {
	v := newViperInstance()

	if repoRoot != "" {
		if err := loadRepoConfig(v, RepoConfigPath(repoRoot)); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	keyPath, err := ExpandHome(cfg.SSH.KeyPath)
	if err != nil {
		return nil, err
	}
	cfg.SSH.KeyPath = keyPath

	logFile, err := ExpandHome(cfg.Log.File)
	if err != nil {
		return nil, err
	}
	cfg.Log.File = logFile

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadRepoConfig merges the JSON repo config when it exists
func loadRepoConfig(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		// Config doesn't exist - keep defaults
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse repo config: %w", err)
	}
	return nil
}

// Validate checks that required settings are present
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Remote) == "" {
		return errors.New("remote must not be empty")
	}
	if strings.TrimSpace(cfg.Message.Initial) == "" {
		return errors.New("initial commit message must not be empty")
	}
	if strings.TrimSpace(cfg.Message.FollowUp) == "" {
		return errors.New("commit message must not be empty")
	}
	return nil
}

// ExpandHome replaces a leading ~/ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

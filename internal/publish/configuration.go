package publish

import "strings"

const (
	defaultRemoteNameConstant          = "origin"
	defaultCommitMessageConstant       = "Update"
	remoteConfigurationKeyConstant     = "remote"
	defaultMessageConfigurationKeyName = "default_message"
	configurationKeySeparatorConstant  = "."
)

// CommandConfiguration captures persisted configuration for the publish command.
type CommandConfiguration struct {
	Remote         string `mapstructure:"remote"`
	DefaultMessage string `mapstructure:"default_message"`
}

// DefaultCommandConfiguration returns baseline configuration values for publishing.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Remote:         defaultRemoteNameConstant,
		DefaultMessage: defaultCommitMessageConstant,
	}
}

// DefaultConfigurationValues exposes baseline publish settings keyed under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + configurationKeySeparatorConstant + remoteConfigurationKeyConstant:     defaults.Remote,
		configurationKeyPrefix + configurationKeySeparatorConstant + defaultMessageConfigurationKeyName: defaults.DefaultMessage,
	}
}

// Sanitize normalizes configured values and restores defaults for blank entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteNameConstant
	}
	if len(sanitized.DefaultMessage) == 0 {
		sanitized.DefaultMessage = defaultCommitMessageConstant
	}
	return sanitized
}

package azure

import "strings"

const (
	defaultOrganizationPrefixConstant        = "pfx"
	organizationPrefixConfigurationKeyName   = "org_prefix"
	configurationKeySeparatorConstant        = "."
)

// CommandConfiguration captures persisted Azure defaults shared by the provisioning commands.
type CommandConfiguration struct {
	OrganizationPrefix     string `mapstructure:"org_prefix"`
	TenantIdentifier       string `mapstructure:"tenant_id"`
	SubscriptionIdentifier string `mapstructure:"subscription_id"`
	ResourceGroup          string `mapstructure:"resource_group"`
	KeyVaultName           string `mapstructure:"keyvault_name"`
}

// DefaultCommandConfiguration returns baseline configuration values for the Azure commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{OrganizationPrefix: defaultOrganizationPrefixConstant}
}

// DefaultConfigurationValues exposes baseline Azure settings keyed under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + configurationKeySeparatorConstant + organizationPrefixConfigurationKeyName: defaults.OrganizationPrefix,
	}
}

// Sanitize trims configured values and restores the default organization prefix when blank.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		OrganizationPrefix:     strings.TrimSpace(configuration.OrganizationPrefix),
		TenantIdentifier:       strings.TrimSpace(configuration.TenantIdentifier),
		SubscriptionIdentifier: strings.TrimSpace(configuration.SubscriptionIdentifier),
		ResourceGroup:          strings.TrimSpace(configuration.ResourceGroup),
		KeyVaultName:           strings.TrimSpace(configuration.KeyVaultName),
	}
	if len(sanitized.OrganizationPrefix) == 0 {
		sanitized.OrganizationPrefix = defaultOrganizationPrefixConstant
	}
	return sanitized
}

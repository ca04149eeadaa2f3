package keyvault

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arktecquant/devkit/internal/azure"
	"github.com/arktecquant/devkit/internal/execshell"
	"github.com/arktecquant/devkit/internal/ui"
	"github.com/arktecquant/devkit/internal/utils"
)

const (
	commandUseConstant                    = "azure-sp-keyvault"
	commandShortDescriptionConstant       = "Provision a service principal with Key Vault secret access"
	commandLongDescriptionConstant        = "azure-sp-keyvault reuses or creates a service principal named after a Git repository and grants it the Key Vault Secrets User role, either on the whole vault or on every secret matching a prefix. The resulting credentials are printed as JSON for GitHub Actions secrets."
	useDefaultsFlagNameConstant           = "use-defaults"
	useDefaultsFlagDescriptionConstant    = "Skip prompts and use configured defaults"
	secretPrefixFlagNameConstant          = "secret-prefix"
	secretPrefixFlagDescriptionConstant   = "Grant access only to secrets whose names start with this prefix"
	repositoryPromptLabelConstant         = "Enter the Git repository name"
	repositoryDefaultSuffixConstant       = "-repo"
	tenantPromptLabelConstant             = "Azure Tenant ID"
	subscriptionPromptLabelConstant       = "Azure Subscription ID"
	resourceGroupPromptLabelConstant      = "Azure Resource Group"
	vaultPromptLabelConstant              = "Azure Key Vault name"
	scopeChoicePromptLabelConstant        = "Grant access to all secrets (1) or secrets matching a prefix (2)"
	scopeChoiceDefaultConstant            = "1"
	scopeChoicePrefixConstant             = "2"
	secretPrefixPromptLabelConstant       = "Enter the prefix to match secrets"
	secretPrefixDefaultSuffixConstant     = "-"
	reusedNoticeTemplateConstant          = "Service principal %s already exists; reusing it with a reset secret\n"
	createdNoticeTemplateConstant         = "Service principal %s created\n"
	assignedScopeNoticeTemplateConstant   = "Assigned %q at %s\n"
	copyInstructionMessageConstant        = "Copy the credentials above into your GitHub repository secrets for use in workflows.\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the azure-sp-keyvault command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	AzureExecutor                azure.AzureExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() azure.CommandConfiguration
}

// Build constructs the azure-sp-keyvault command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().Bool(useDefaultsFlagNameConstant, false, useDefaultsFlagDescriptionConstant)
	command.Flags().String(secretPrefixFlagNameConstant, "", secretPrefixFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	useDefaults, useDefaultsError := command.Flags().GetBool(useDefaultsFlagNameConstant)
	if useDefaultsError != nil {
		return useDefaultsError
	}
	secretPrefixFlagValue, secretPrefixError := command.Flags().GetString(secretPrefixFlagNameConstant)
	if secretPrefixError != nil {
		return secretPrefixError
	}

	prompter, prompterError := ui.NewIOValuePrompter(command.InOrStdin(), utils.NewFlushingWriter(command.OutOrStdout()))
	if prompterError != nil {
		return prompterError
	}

	resolveValue := func(promptLabel string, defaultValue string) (string, error) {
		if useDefaults {
			return defaultValue, nil
		}
		return prompter.PromptForValue(promptLabel, defaultValue)
	}

	repositoryName, repositoryError := resolveValue(repositoryPromptLabelConstant, configuration.OrganizationPrefix+repositoryDefaultSuffixConstant)
	if repositoryError != nil {
		return repositoryError
	}
	tenantIdentifier, tenantError := resolveValue(tenantPromptLabelConstant, configuration.TenantIdentifier)
	if tenantError != nil {
		return tenantError
	}
	subscriptionIdentifier, subscriptionError := resolveValue(subscriptionPromptLabelConstant, configuration.SubscriptionIdentifier)
	if subscriptionError != nil {
		return subscriptionError
	}
	resourceGroup, resourceGroupError := resolveValue(resourceGroupPromptLabelConstant, configuration.ResourceGroup)
	if resourceGroupError != nil {
		return resourceGroupError
	}
	vaultName, vaultError := resolveValue(vaultPromptLabelConstant, configuration.KeyVaultName)
	if vaultError != nil {
		return vaultError
	}

	secretPrefix := secretPrefixFlagValue
	if len(secretPrefix) == 0 && !useDefaults {
		scopeChoice, scopeChoiceError := prompter.PromptForValue(scopeChoicePromptLabelConstant, scopeChoiceDefaultConstant)
		if scopeChoiceError != nil {
			return scopeChoiceError
		}
		if scopeChoice == scopeChoicePrefixConstant {
			chosenPrefix, prefixError := prompter.PromptForValue(secretPrefixPromptLabelConstant, repositoryName+secretPrefixDefaultSuffixConstant)
			if prefixError != nil {
				return prefixError
			}
			secretPrefix = chosenPrefix
		}
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	provisionResult, provisionError := service.Provision(command.Context(), Options{
		RepositoryName:         repositoryName,
		TenantIdentifier:       tenantIdentifier,
		SubscriptionIdentifier: subscriptionIdentifier,
		ResourceGroup:          resourceGroup,
		VaultName:              vaultName,
		SecretPrefix:           secretPrefix,
	})
	if provisionError != nil {
		return provisionError
	}

	if provisionResult.Reused {
		fmt.Fprintf(command.OutOrStdout(), reusedNoticeTemplateConstant, provisionResult.ServicePrincipalName)
	} else {
		fmt.Fprintf(command.OutOrStdout(), createdNoticeTemplateConstant, provisionResult.ServicePrincipalName)
	}
	for _, assignedScope := range provisionResult.AssignedScopes {
		fmt.Fprintf(command.OutOrStdout(), assignedScopeNoticeTemplateConstant, secretsUserRoleNameConstant, assignedScope)
	}

	credentialsBlock, renderError := azure.RenderCredentialsBlock(provisionResult.Credentials)
	if renderError != nil {
		return renderError
	}
	fmt.Fprint(command.OutOrStdout(), credentialsBlock)
	fmt.Fprint(command.OutOrStdout(), copyInstructionMessageConstant)

	return nil
}

func (builder *CommandBuilder) resolveConfiguration() azure.CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return azure.DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveService() (*Service, error) {
	azureExecutor, executorError := builder.resolveAzureExecutor()
	if executorError != nil {
		return nil, executorError
	}

	client, clientError := azure.NewClient(azureExecutor)
	if clientError != nil {
		return nil, clientError
	}

	provisioner, provisionerError := azure.NewServicePrincipalProvisioner(client)
	if provisionerError != nil {
		return nil, provisionerError
	}

	return NewService(Dependencies{Provisioner: provisioner, RoleClient: client})
}

func (builder *CommandBuilder) resolveAzureExecutor() (azure.AzureExecutor, error) {
	if builder.AzureExecutor != nil {
		return builder.AzureExecutor, nil
	}

	logger := builder.resolveLogger()
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}

	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		shellExecutor.SetEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}

	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

package swa

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arktecquant/devkit/internal/azure"
	"github.com/arktecquant/devkit/internal/execshell"
	"github.com/arktecquant/devkit/internal/ui"
	"github.com/arktecquant/devkit/internal/utils"
)

const (
	commandUseConstant                  = "azure-sp-swa"
	commandShortDescriptionConstant     = "Provision a Static Web App deployer service principal"
	commandLongDescriptionConstant      = "azure-sp-swa reuses or creates a deployer service principal, grants it the Contributor role at resource-group scope, and can optionally create a Free-sku Static Web App. The resulting credentials are printed as JSON for GitHub Actions secrets."
	useDefaultsFlagNameConstant         = "use-defaults"
	useDefaultsFlagDescriptionConstant  = "Skip prompts and use configured defaults"
	baseNamePromptLabelConstant         = "Service Principal name prefix"
	baseNameDefaultSuffixConstant       = "-swa-deployer"
	tenantPromptLabelConstant           = "Azure Tenant ID"
	subscriptionPromptLabelConstant     = "Azure Subscription ID"
	resourceGroupPromptLabelConstant    = "Resource Group name"
	resourceGroupDefaultConstant        = "rg-core"
	createWebAppPromptLabelConstant     = "Do you want to create an Azure Static Web App?"
	createWebAppDefaultAnswerConstant   = "yes"
	webAppNamePromptLabelConstant       = "Static Web App name"
	webAppNameDefaultSuffixConstant     = "-swa"
	webAppLocationPromptLabelConstant   = "SWA location"
	webAppLocationDefaultConstant       = "AustraliaEast"
	affirmativeShortAnswerConstant      = "y"
	affirmativeLongAnswerConstant       = "yes"
	reusedNoticeTemplateConstant        = "Service principal %s already exists; reusing it with a reset secret\n"
	createdNoticeTemplateConstant       = "Service principal %s created\n"
	assignedScopeNoticeTemplateConstant = "Assigned %q at %s\n"
	webAppCreatedNoticeTemplateConstant = "Static web app created: %s\n"
	webAppNameOutputTemplateConstant    = "SWA_NAME=%s\n"
	webAppGroupOutputTemplateConstant   = "SWA_RESOURCE_GROUP=%s\n"
	webAppRegionOutputTemplateConstant  = "SWA_LOCATION=%s\n"
	copyInstructionMessageConstant      = "Copy the credentials above into your GitHub repository secrets as AZURE_CREDS.\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the azure-sp-swa command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	AzureExecutor                azure.AzureExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() azure.CommandConfiguration
}

// Build constructs the azure-sp-swa command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().Bool(useDefaultsFlagNameConstant, false, useDefaultsFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	useDefaults, useDefaultsError := command.Flags().GetBool(useDefaultsFlagNameConstant)
	if useDefaultsError != nil {
		return useDefaultsError
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

	baseName, baseNameError := resolveValue(baseNamePromptLabelConstant, configuration.OrganizationPrefix+baseNameDefaultSuffixConstant)
	if baseNameError != nil {
		return baseNameError
	}
	tenantIdentifier, tenantError := resolveValue(tenantPromptLabelConstant, configuration.TenantIdentifier)
	if tenantError != nil {
		return tenantError
	}
	subscriptionIdentifier, subscriptionError := resolveValue(subscriptionPromptLabelConstant, configuration.SubscriptionIdentifier)
	if subscriptionError != nil {
		return subscriptionError
	}
	resourceGroup, resourceGroupError := resolveValue(resourceGroupPromptLabelConstant, resourceGroupDefaultConstant)
	if resourceGroupError != nil {
		return resourceGroupError
	}

	// Web app creation is interactive only; --use-defaults provisions the
	// deployer without creating resources.
	createWebApp := false
	webAppName := ""
	webAppLocation := ""
	if !useDefaults {
		createWebAppAnswer, createWebAppError := prompter.PromptForValue(createWebAppPromptLabelConstant, createWebAppDefaultAnswerConstant)
		if createWebAppError != nil {
			return createWebAppError
		}
		createWebApp = isAffirmativeAnswer(createWebAppAnswer)
		if createWebApp {
			var webAppPromptError error
			webAppName, webAppPromptError = prompter.PromptForValue(webAppNamePromptLabelConstant, configuration.OrganizationPrefix+webAppNameDefaultSuffixConstant)
			if webAppPromptError != nil {
				return webAppPromptError
			}
			webAppLocation, webAppPromptError = prompter.PromptForValue(webAppLocationPromptLabelConstant, webAppLocationDefaultConstant)
			if webAppPromptError != nil {
				return webAppPromptError
			}
		}
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	provisionResult, provisionError := service.Provision(command.Context(), Options{
		BaseName:               baseName,
		TenantIdentifier:       tenantIdentifier,
		SubscriptionIdentifier: subscriptionIdentifier,
		ResourceGroup:          resourceGroup,
		CreateWebApp:           createWebApp,
		WebAppName:             webAppName,
		WebAppLocation:         webAppLocation,
	})
	if provisionError != nil {
		return provisionError
	}

	if provisionResult.Reused {
		fmt.Fprintf(command.OutOrStdout(), reusedNoticeTemplateConstant, provisionResult.ServicePrincipalName)
	} else {
		fmt.Fprintf(command.OutOrStdout(), createdNoticeTemplateConstant, provisionResult.ServicePrincipalName)
	}
	fmt.Fprintf(command.OutOrStdout(), assignedScopeNoticeTemplateConstant, contributorRoleNameConstant, provisionResult.AssignedScope)

	if provisionResult.WebAppCreated {
		fmt.Fprintf(command.OutOrStdout(), webAppCreatedNoticeTemplateConstant, provisionResult.WebAppName)
		fmt.Fprintf(command.OutOrStdout(), webAppNameOutputTemplateConstant, provisionResult.WebAppName)
		fmt.Fprintf(command.OutOrStdout(), webAppGroupOutputTemplateConstant, provisionResult.WebAppResourceGroup)
		fmt.Fprintf(command.OutOrStdout(), webAppRegionOutputTemplateConstant, provisionResult.WebAppLocation)
	}

	credentialsBlock, renderError := azure.RenderCredentialsBlock(provisionResult.Credentials)
	if renderError != nil {
		return renderError
	}
	fmt.Fprint(command.OutOrStdout(), credentialsBlock)
	fmt.Fprint(command.OutOrStdout(), copyInstructionMessageConstant)

	return nil
}

func isAffirmativeAnswer(answer string) bool {
	normalizedAnswer := strings.ToLower(strings.TrimSpace(answer))
	return normalizedAnswer == affirmativeShortAnswerConstant || normalizedAnswer == affirmativeLongAnswerConstant
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

	return NewService(Dependencies{Provisioner: provisioner, ResourceClient: client})
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

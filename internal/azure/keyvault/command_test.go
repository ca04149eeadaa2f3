package keyvault_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arktecquant/devkit/internal/azure"
	"github.com/arktecquant/devkit/internal/azure/keyvault"
	"github.com/arktecquant/devkit/internal/execshell"
)

type scriptedAzureExecutor struct {
	executedArguments [][]string
	results           []execshell.ExecutionResult
	executionErrors   []error
}

func (executor *scriptedAzureExecutor) ExecuteAzure(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	invocationIndex := len(executor.executedArguments)
	executor.executedArguments = append(executor.executedArguments, details.Arguments)

	var executionResult execshell.ExecutionResult
	if invocationIndex < len(executor.results) {
		executionResult = executor.results[invocationIndex]
	}

	var executionError error
	if invocationIndex < len(executor.executionErrors) {
		executionError = executor.executionErrors[invocationIndex]
	}

	return executionResult, executionError
}

func testConfiguration() azure.CommandConfiguration {
	return azure.CommandConfiguration{
		OrganizationPrefix:     "aq",
		TenantIdentifier:       "tenant-789",
		SubscriptionIdentifier: "sub-1",
		ResourceGroup:          "rg-core",
		KeyVaultName:           "production-vault",
	}
}

func TestKeyVaultCommandWithDefaultsCreatesServicePrincipal(testInstance *testing.T) {
	executor := &scriptedAzureExecutor{
		results: []execshell.ExecutionResult{
			{},
			{StandardOutput: `{"clientId": "client-123", "clientSecret": "secret-abc", "tenantId": "tenant-789"}`},
			{StandardOutput: "object-456\n"},
			{},
		},
		executionErrors: []error{errors.New("sp not found")},
	}

	builder := &keyvault.CommandBuilder{
		AzureExecutor:         executor,
		ConfigurationProvider: testConfiguration,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	standardOutput := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(&bytes.Buffer{})
	command.SetIn(strings.NewReader(""))
	command.SetContext(context.Background())
	command.SetArgs([]string{"--use-defaults"})

	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, executor.executedArguments, 4)
	require.Equal(testInstance, []string{"ad", "sp", "show", "--id", "aq-repo-sp"}, executor.executedArguments[0])
	require.Equal(testInstance, "create-for-rbac", executor.executedArguments[1][2])
	require.Equal(testInstance, []string{
		"role", "assignment", "create",
		"--assignee", "object-456",
		"--role", "Key Vault Secrets User",
		"--scope", "/subscriptions/sub-1/resourceGroups/rg-core/providers/Microsoft.KeyVault/vaults/production-vault",
	}, executor.executedArguments[3])

	commandOutput := standardOutput.String()
	require.Contains(testInstance, commandOutput, "Service principal aq-repo-sp created")
	require.Contains(testInstance, commandOutput, "AZURE CREDENTIALS")
	require.Contains(testInstance, commandOutput, `"clientId": "client-123"`)
	require.Contains(testInstance, commandOutput, `"subscriptionId": "sub-1"`)
}

func TestKeyVaultCommandPromptsForValues(testInstance *testing.T) {
	executor := &scriptedAzureExecutor{
		results: []execshell.ExecutionResult{
			{StandardOutput: `{"appId": "client-123", "id": "object-456"}`},
			{StandardOutput: "tenant-789\n"},
			{StandardOutput: "fresh-secret\n"},
			{StandardOutput: "payments-api-key\n"},
			{},
		},
	}

	builder := &keyvault.CommandBuilder{
		AzureExecutor:         executor,
		ConfigurationProvider: testConfiguration,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	// Answers: repository name, tenant, subscription, resource group, vault,
	// scope choice, secret prefix.
	promptAnswers := "payments\n\n\n\n\n2\npayments-\n"

	standardOutput := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(&bytes.Buffer{})
	command.SetIn(strings.NewReader(promptAnswers))
	command.SetContext(context.Background())
	command.SetArgs(nil)

	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, []string{"ad", "sp", "show", "--id", "payments-sp"}, executor.executedArguments[0])
	require.Equal(testInstance, []string{"keyvault", "secret", "list", "--vault-name", "production-vault", "--query", "[?starts_with(name, 'payments-')].name", "-o", "tsv"}, executor.executedArguments[3])
	require.Equal(testInstance, "/subscriptions/sub-1/resourceGroups/rg-core/providers/Microsoft.KeyVault/vaults/production-vault/secrets/payments-api-key", executor.executedArguments[4][8])

	commandOutput := standardOutput.String()
	require.Contains(testInstance, commandOutput, "Enter the Git repository name [aq-repo]: ")
	require.Contains(testInstance, commandOutput, "Service principal payments-sp already exists")
	require.Contains(testInstance, commandOutput, `"clientSecret": "fresh-secret"`)
}

func TestKeyVaultCommandFailsWhenNoSecretsMatchPrefix(testInstance *testing.T) {
	executor := &scriptedAzureExecutor{
		results: []execshell.ExecutionResult{
			{StandardOutput: `{"appId": "client-123", "id": "object-456"}`},
			{StandardOutput: "tenant-789\n"},
			{StandardOutput: "fresh-secret\n"},
			{StandardOutput: "\n"},
		},
	}

	builder := &keyvault.CommandBuilder{
		AzureExecutor:         executor,
		ConfigurationProvider: testConfiguration,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetIn(strings.NewReader(""))
	command.SetContext(context.Background())
	command.SetArgs([]string{"--use-defaults", "--secret-prefix", "missing-"})
	command.SilenceErrors = true
	command.SilenceUsage = true

	executionError := command.Execute()
	require.ErrorIs(testInstance, executionError, keyvault.ErrNoMatchingSecrets)
}

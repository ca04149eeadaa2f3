package swa_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arktecquant/devkit/internal/azure"
	"github.com/arktecquant/devkit/internal/azure/swa"
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
	}
}

func TestSWACommandWithDefaultsProvisionsDeployer(testInstance *testing.T) {
	executor := &scriptedAzureExecutor{
		results: []execshell.ExecutionResult{
			{},
			{StandardOutput: `{"clientId": "client-123", "clientSecret": "secret-abc", "tenantId": "tenant-789"}`},
			{StandardOutput: "object-456\n"},
			{},
		},
		executionErrors: []error{errors.New("sp not found")},
	}

	builder := &swa.CommandBuilder{
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
	require.Equal(testInstance, []string{"ad", "sp", "show", "--id", "aq-swa-deployer-sp"}, executor.executedArguments[0])
	require.Equal(testInstance, []string{
		"role", "assignment", "create",
		"--assignee", "object-456",
		"--role", "Contributor",
		"--scope", "/subscriptions/sub-1/resourceGroups/rg-core",
	}, executor.executedArguments[3])

	commandOutput := standardOutput.String()
	require.Contains(testInstance, commandOutput, "Service principal aq-swa-deployer-sp created")
	require.Contains(testInstance, commandOutput, "AZURE CREDENTIALS")
	require.NotContains(testInstance, commandOutput, "SWA_NAME=")
}

func TestSWACommandInteractiveCreatesWebApp(testInstance *testing.T) {
	executor := &scriptedAzureExecutor{
		results: []execshell.ExecutionResult{
			{StandardOutput: `{"appId": "client-123", "id": "object-456"}`},
			{StandardOutput: "tenant-789\n"},
			{StandardOutput: "fresh-secret\n"},
			{},
			{},
		},
	}

	builder := &swa.CommandBuilder{
		AzureExecutor:         executor,
		ConfigurationProvider: testConfiguration,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	// Answers: base name, tenant, subscription, resource group, create web
	// app, web app name, location.
	promptAnswers := "\n\n\n\nyes\n\n\n"

	standardOutput := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(&bytes.Buffer{})
	command.SetIn(strings.NewReader(promptAnswers))
	command.SetContext(context.Background())
	command.SetArgs(nil)

	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, executor.executedArguments, 5)
	require.Equal(testInstance, []string{"staticwebapp", "create", "--name", "aq-swa", "--resource-group", "rg-core", "--location", "AustraliaEast", "--sku", "Free", "--source", "."}, executor.executedArguments[4])

	commandOutput := standardOutput.String()
	require.Contains(testInstance, commandOutput, "Service Principal name prefix [aq-swa-deployer]: ")
	require.Contains(testInstance, commandOutput, "Service principal aq-swa-deployer-sp already exists")
	require.Contains(testInstance, commandOutput, "SWA_NAME=aq-swa")
	require.Contains(testInstance, commandOutput, "SWA_RESOURCE_GROUP=rg-core")
	require.Contains(testInstance, commandOutput, "SWA_LOCATION=AustraliaEast")
	require.Contains(testInstance, commandOutput, `"clientSecret": "fresh-secret"`)
}

func TestSWACommandInteractiveDeclinesWebApp(testInstance *testing.T) {
	executor := &scriptedAzureExecutor{
		results: []execshell.ExecutionResult{
			{StandardOutput: `{"appId": "client-123", "id": "object-456"}`},
			{StandardOutput: "tenant-789\n"},
			{StandardOutput: "fresh-secret\n"},
			{},
		},
	}

	builder := &swa.CommandBuilder{
		AzureExecutor:         executor,
		ConfigurationProvider: testConfiguration,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	// Answers: base name, tenant, subscription, resource group, create web app.
	promptAnswers := "\n\n\n\nno\n"

	standardOutput := &bytes.Buffer{}
	command.SetOut(standardOutput)
	command.SetErr(&bytes.Buffer{})
	command.SetIn(strings.NewReader(promptAnswers))
	command.SetContext(context.Background())
	command.SetArgs(nil)

	require.NoError(testInstance, command.Execute())

	require.Len(testInstance, executor.executedArguments, 4)
	require.NotContains(testInstance, standardOutput.String(), "SWA_NAME=")
}

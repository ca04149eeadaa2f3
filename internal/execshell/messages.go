package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitStatusSubcommandNameConstant   = "status"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitRemoteSubcommandNameConstant   = "remote"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitPushSubcommandNameConstant     = "push"
	gitFetchSubcommandNameConstant    = "fetch"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitHeadReferenceConstant          = "HEAD"
	gitMessageFlagConstant            = "-m"
	gitFetchAllRemotesLabelConstant   = "all remotes"
)

const (
	gitStatusStartTemplateConstant              = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant            = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant            = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant   = "Unable to review working tree status in %s: %s"
	gitBranchStartTemplateConstant              = "Identifying current branch in %s"
	gitBranchSuccessTemplateConstant            = "Current branch in %s is %s"
	gitBranchDetachedSuccessTemplateConstant    = "%s is in a detached HEAD state"
	gitBranchFailureTemplateConstant            = "Failed to identify current branch in %s (exit code %d%s)"
	gitBranchExecutionFailureTemplateConstant   = "Unable to identify current branch in %s: %s"
	gitRemoteStartTemplateConstant              = "Checking %s remote for %s"
	gitRemoteSuccessTemplateConstant            = "%s remote for %s points to %s"
	gitRemoteFailureTemplateConstant            = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteExecutionFailureTemplateConstant   = "Unable to read %s remote for %s: %s"
	gitStageStartTemplateConstant               = "Staging changes in %s"
	gitStageSuccessTemplateConstant             = "Staged changes in %s"
	gitStageFailureTemplateConstant             = "Failed to stage changes in %s (exit code %d%s)"
	gitStageExecutionFailureTemplateConstant    = "Unable to stage changes in %s: %s"
	gitCommitStartTemplateConstant              = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant            = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant            = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant   = "Unable to create commit in %s with message %q: %s"
	gitPushStartTemplateConstant                = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant              = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant              = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant     = "Unable to push %s to %s from %s: %s"
	gitFetchStartTemplateConstant               = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant             = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant             = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant    = "Unable to fetch from %s in %s: %s"
)

const (
	azureDirectorySubcommandNameConstant     = "ad"
	azureRoleSubcommandNameConstant          = "role"
	azureKeyVaultSubcommandNameConstant      = "keyvault"
	azureStaticWebAppSubcommandNameConstant  = "staticwebapp"
	azureServicePrincipalSubcommandConstant  = "sp"
	azureShowSubcommandNameConstant          = "show"
	azureCreateForRBACSubcommandNameConstant = "create-for-rbac"
	azureCredentialSubcommandNameConstant    = "credential"
	azureNameFlagConstant                    = "--name"
	azureIdentifierFlagConstant              = "--id"
	azureVaultNameFlagConstant               = "--vault-name"
	azureScopeFlagConstant                   = "--scope"
)

const (
	azureSPShowStartTemplateConstant          = "Looking up service principal %s"
	azureSPShowSuccessTemplateConstant        = "Retrieved service principal %s"
	azureSPShowFailureTemplateConstant        = "Failed to look up service principal %s (exit code %d%s)"
	azureSPShowExecutionFailureConstant       = "Unable to look up service principal %s: %s"
	azureSPCreateStartTemplateConstant        = "Creating service principal %s"
	azureSPCreateSuccessTemplateConstant      = "Created service principal %s"
	azureSPCreateFailureTemplateConstant      = "Failed to create service principal %s (exit code %d%s)"
	azureSPCreateExecutionFailureConstant     = "Unable to create service principal %s: %s"
	azureSPResetStartTemplateConstant         = "Resetting credential for service principal %s"
	azureSPResetSuccessTemplateConstant       = "Reset credential for service principal %s"
	azureSPResetFailureTemplateConstant       = "Failed to reset credential for service principal %s (exit code %d%s)"
	azureSPResetExecutionFailureConstant      = "Unable to reset credential for service principal %s: %s"
	azureRoleAssignStartTemplateConstant      = "Assigning role at scope %s"
	azureRoleAssignSuccessTemplateConstant    = "Assigned role at scope %s"
	azureRoleAssignFailureTemplateConstant    = "Failed to assign role at scope %s (exit code %d%s)"
	azureRoleAssignExecutionFailureConstant   = "Unable to assign role at scope %s: %s"
	azureSecretListStartTemplateConstant      = "Listing secrets in vault %s"
	azureSecretListSuccessTemplateConstant    = "Listed secrets in vault %s"
	azureSecretListFailureTemplateConstant    = "Failed to list secrets in vault %s (exit code %d%s)"
	azureSecretListExecutionFailureConstant   = "Unable to list secrets in vault %s: %s"
	azureSWACreateStartTemplateConstant       = "Creating static web app %s"
	azureSWACreateSuccessTemplateConstant     = "Created static web app %s"
	azureSWACreateFailureTemplateConstant     = "Failed to create static web app %s (exit code %d%s)"
	azureSWACreateExecutionFailureConstant    = "Unable to create static web app %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandAzure:
		return formatter.describeAzureMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(command.Details.Arguments[0])

	switch subcommand {
	case gitStatusSubcommandNameConstant:
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory),
			success:          fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory),
			failureTemplate:  gitStatusFailureTemplateConstant,
			failureArguments: []any{workingDirectory},
			executionFailure: gitStatusExecutionFailureTemplateConstant,
			executionTargets: []any{workingDirectory},
		})
	case gitRevParseSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitAbbrevRefFlagConstant) {
			successMessage := fmt.Sprintf(gitBranchSuccessTemplateConstant, workingDirectory, strings.TrimSpace(result.StandardOutput))
			trimmedOutput := strings.TrimSpace(result.StandardOutput)
			if len(trimmedOutput) == 0 || strings.EqualFold(trimmedOutput, gitHeadReferenceConstant) {
				successMessage = fmt.Sprintf(gitBranchDetachedSuccessTemplateConstant, workingDirectory)
			}
			return formatter.renderStageMessages(stage, result, failure, stageTemplates{
				start:            fmt.Sprintf(gitBranchStartTemplateConstant, workingDirectory),
				success:          successMessage,
				failureTemplate:  gitBranchFailureTemplateConstant,
				failureArguments: []any{workingDirectory},
				executionFailure: gitBranchExecutionFailureTemplateConstant,
				executionTargets: []any{workingDirectory},
			})
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 2))
		remoteURL := formatter.ensureValue(strings.TrimSpace(result.StandardOutput))
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(gitRemoteStartTemplateConstant, remoteName, workingDirectory),
			success:          fmt.Sprintf(gitRemoteSuccessTemplateConstant, remoteName, workingDirectory, remoteURL),
			failureTemplate:  gitRemoteFailureTemplateConstant,
			failureArguments: []any{remoteName, workingDirectory},
			executionFailure: gitRemoteExecutionFailureTemplateConstant,
			executionTargets: []any{remoteName, workingDirectory},
		})
	case gitAddSubcommandNameConstant:
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(gitStageStartTemplateConstant, workingDirectory),
			success:          fmt.Sprintf(gitStageSuccessTemplateConstant, workingDirectory),
			failureTemplate:  gitStageFailureTemplateConstant,
			failureArguments: []any{workingDirectory},
			executionFailure: gitStageExecutionFailureTemplateConstant,
			executionTargets: []any{workingDirectory},
		})
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage),
			success:          fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage),
			failureTemplate:  gitCommitFailureTemplateConstant,
			failureArguments: []any{workingDirectory, commitMessage},
			executionFailure: gitCommitExecutionFailureTemplateConstant,
			executionTargets: []any{workingDirectory, commitMessage},
		})
	case gitPushSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 1))
		branchName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, 2))
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(gitPushStartTemplateConstant, branchName, remoteName, workingDirectory),
			success:          fmt.Sprintf(gitPushSuccessTemplateConstant, branchName, remoteName, workingDirectory),
			failureTemplate:  gitPushFailureTemplateConstant,
			failureArguments: []any{branchName, remoteName, workingDirectory},
			executionFailure: gitPushExecutionFailureTemplateConstant,
			executionTargets: []any{branchName, remoteName, workingDirectory},
		})
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.extractFirstNonFlagArgument(command.Details.Arguments[1:])
		if len(remoteName) == 0 {
			remoteName = gitFetchAllRemotesLabelConstant
		}
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(gitFetchStartTemplateConstant, remoteName, workingDirectory),
			success:          fmt.Sprintf(gitFetchSuccessTemplateConstant, remoteName, workingDirectory),
			failureTemplate:  gitFetchFailureTemplateConstant,
			failureArguments: []any{remoteName, workingDirectory},
			executionFailure: gitFetchExecutionFailureTemplateConstant,
			executionTargets: []any{remoteName, workingDirectory},
		})
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeAzureMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[0]) {
	case azureDirectorySubcommandNameConstant:
		return formatter.describeAzureServicePrincipalMessage(command, result, failure, stage)
	case azureRoleSubcommandNameConstant:
		scope := formatter.ensureValue(findFlagValue(arguments, azureScopeFlagConstant))
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(azureRoleAssignStartTemplateConstant, scope),
			success:          fmt.Sprintf(azureRoleAssignSuccessTemplateConstant, scope),
			failureTemplate:  azureRoleAssignFailureTemplateConstant,
			failureArguments: []any{scope},
			executionFailure: azureRoleAssignExecutionFailureConstant,
			executionTargets: []any{scope},
		})
	case azureKeyVaultSubcommandNameConstant:
		vaultName := formatter.ensureValue(findFlagValue(arguments, azureVaultNameFlagConstant))
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(azureSecretListStartTemplateConstant, vaultName),
			success:          fmt.Sprintf(azureSecretListSuccessTemplateConstant, vaultName),
			failureTemplate:  azureSecretListFailureTemplateConstant,
			failureArguments: []any{vaultName},
			executionFailure: azureSecretListExecutionFailureConstant,
			executionTargets: []any{vaultName},
		})
	case azureStaticWebAppSubcommandNameConstant:
		applicationName := formatter.ensureValue(findFlagValue(arguments, azureNameFlagConstant))
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(azureSWACreateStartTemplateConstant, applicationName),
			success:          fmt.Sprintf(azureSWACreateSuccessTemplateConstant, applicationName),
			failureTemplate:  azureSWACreateFailureTemplateConstant,
			failureArguments: []any{applicationName},
			executionFailure: azureSWACreateExecutionFailureConstant,
			executionTargets: []any{applicationName},
		})
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeAzureServicePrincipalMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 3 || strings.TrimSpace(arguments[1]) != azureServicePrincipalSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	identifier := formatter.ensureValue(findFlagValue(arguments, azureIdentifierFlagConstant))

	switch strings.TrimSpace(arguments[2]) {
	case azureShowSubcommandNameConstant:
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(azureSPShowStartTemplateConstant, identifier),
			success:          fmt.Sprintf(azureSPShowSuccessTemplateConstant, identifier),
			failureTemplate:  azureSPShowFailureTemplateConstant,
			failureArguments: []any{identifier},
			executionFailure: azureSPShowExecutionFailureConstant,
			executionTargets: []any{identifier},
		})
	case azureCreateForRBACSubcommandNameConstant:
		principalName := formatter.ensureValue(findFlagValue(arguments, azureNameFlagConstant))
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(azureSPCreateStartTemplateConstant, principalName),
			success:          fmt.Sprintf(azureSPCreateSuccessTemplateConstant, principalName),
			failureTemplate:  azureSPCreateFailureTemplateConstant,
			failureArguments: []any{principalName},
			executionFailure: azureSPCreateExecutionFailureConstant,
			executionTargets: []any{principalName},
		})
	case azureCredentialSubcommandNameConstant:
		return formatter.renderStageMessages(stage, result, failure, stageTemplates{
			start:            fmt.Sprintf(azureSPResetStartTemplateConstant, identifier),
			success:          fmt.Sprintf(azureSPResetSuccessTemplateConstant, identifier),
			failureTemplate:  azureSPResetFailureTemplateConstant,
			failureArguments: []any{identifier},
			executionFailure: azureSPResetExecutionFailureConstant,
			executionTargets: []any{identifier},
		})
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type stageTemplates struct {
	start            string
	success          string
	failureTemplate  string
	failureArguments []any
	executionFailure string
	executionTargets []any
}

func (formatter CommandMessageFormatter) renderStageMessages(stage messageStage, result ExecutionResult, failure error, templates stageTemplates) string {
	switch stage {
	case messageStageStart:
		return templates.start
	case messageStageSuccess:
		return templates.success
	case messageStageFailure:
		failureArguments := append([]any{}, templates.failureArguments...)
		failureArguments = append(failureArguments, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failureTemplate, failureArguments...)
	case messageStageExecutionFailure:
		executionArguments := append([]any{}, templates.executionTargets...)
		executionArguments = append(executionArguments, formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, executionArguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return arguments[index+1]
		}
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

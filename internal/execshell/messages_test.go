package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForCommitIncludesMessage(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"commit", "-m", "Update"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, `Creating commit in /workspace/repo with message "Update"`, message)
}

func TestBuildFailureMessageForCommitIncludesExitCodeAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"commit", "-m", "Update"},
			WorkingDirectory: "/workspace/repo",
		},
	}
	result := ExecutionResult{ExitCode: 1, StandardError: "nothing to commit, working tree clean"}

	message := formatter.BuildFailureMessage(command, result)

	require.Equal(t, `Failed to create commit in /workspace/repo with message "Update" (exit code 1: nothing to commit, working tree clean)`, message)
}

func TestBuildStartedMessageForPushNamesRemoteAndBranch(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"push", "origin", "main"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Pushing main to origin from /workspace/repo", message)
}

func TestBuildStartedMessageForFetchWithoutRemoteUsesAllRemotesLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"fetch", "--no-recurse-submodules"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Fetching from all remotes in /workspace/repo", message)
}

func TestBuildStartedMessageForFetchSkipsFlagsWhenNamingRemote(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"fetch", "--no-recurse-submodules", "origin"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Fetching from origin in /workspace/repo", message)
}

func TestBuildSuccessMessageForBranchLookupReportsBranchName(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"rev-parse", "--abbrev-ref", "HEAD"},
			WorkingDirectory: "/workspace/repo",
		},
	}
	result := ExecutionResult{StandardOutput: "main\n"}

	message := formatter.buildMessage(command, result, nil, messageStageSuccess)

	require.Equal(t, "Current branch in /workspace/repo is main", message)
}

func TestBuildSuccessMessageForDetachedHeadReportsDetachedState(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"rev-parse", "--abbrev-ref", "HEAD"},
			WorkingDirectory: "/workspace/repo",
		},
	}
	result := ExecutionResult{StandardOutput: "HEAD\n"}

	message := formatter.buildMessage(command, result, nil, messageStageSuccess)

	require.Equal(t, "/workspace/repo is in a detached HEAD state", message)
}

func TestBuildStartedMessageForServicePrincipalLookup(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandAzure,
		Details: CommandDetails{
			Arguments: []string{"ad", "sp", "show", "--id", "demo-repo-sp"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Looking up service principal demo-repo-sp", message)
}

func TestBuildStartedMessageForRoleAssignmentNamesScope(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandAzure,
		Details: CommandDetails{
			Arguments: []string{"role", "assignment", "create", "--assignee", "object-id", "--role", "Contributor", "--scope", "/subscriptions/sub/resourceGroups/rg-core"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Assigning role at scope /subscriptions/sub/resourceGroups/rg-core", message)
}

func TestBuildGenericMessageForUnknownSubcommand(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"gc"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Running git gc (in /workspace/repo)", message)
}

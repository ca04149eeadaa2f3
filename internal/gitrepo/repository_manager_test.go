package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arktecquant/devkit/internal/execshell"
	"github.com/arktecquant/devkit/internal/gitrepo"
)

const repositoryPathConstant = "/tmp/example-repository"

type scriptedGitExecutor struct {
	executedDetails []execshell.CommandDetails
	results         []execshell.ExecutionResult
	executionErrors []error
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	invocationIndex := len(executor.executedDetails)
	executor.executedDetails = append(executor.executedDetails, details)

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

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	repositoryManager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, repositoryManager)
}

func TestRepositoryManagerCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name           string
		standardOutput string
		expectedClean  bool
	}{
		{name: "clean_worktree", standardOutput: "", expectedClean: true},
		{name: "whitespace_only_output", standardOutput: "\n", expectedClean: true},
		{name: "dirty_worktree", standardOutput: " M main.go\n?? notes.txt\n", expectedClean: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{results: []execshell.ExecutionResult{{StandardOutput: testCase.standardOutput}}}
			repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(subtestInstance, creationError)

			cleanWorktree, checkError := repositoryManager.CheckCleanWorktree(context.Background(), repositoryPathConstant)
			require.NoError(subtestInstance, checkError)
			require.Equal(subtestInstance, testCase.expectedClean, cleanWorktree)
			require.Equal(subtestInstance, []string{"status", "--porcelain"}, executor.executedDetails[0].Arguments)
			require.Equal(subtestInstance, repositoryPathConstant, executor.executedDetails[0].WorkingDirectory)
		})
	}
}

func TestRepositoryManagerGetCurrentBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		standardOutput string
		expectedBranch string
		expectedError  error
	}{
		{name: "named_branch", standardOutput: "main\n", expectedBranch: "main"},
		{name: "feature_branch", standardOutput: "feature/publish\n", expectedBranch: "feature/publish"},
		{name: "detached_head", standardOutput: "HEAD\n", expectedError: gitrepo.ErrDetachedHead},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{results: []execshell.ExecutionResult{{StandardOutput: testCase.standardOutput}}}
			repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(subtestInstance, creationError)

			branchName, branchError := repositoryManager.GetCurrentBranch(context.Background(), repositoryPathConstant)
			if testCase.expectedError != nil {
				require.ErrorIs(subtestInstance, branchError, testCase.expectedError)
				return
			}
			require.NoError(subtestInstance, branchError)
			require.Equal(subtestInstance, testCase.expectedBranch, branchName)
			require.Equal(subtestInstance, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.executedDetails[0].Arguments)
		})
	}
}

func TestRepositoryManagerGetRemoteURL(testInstance *testing.T) {
	executor := &scriptedGitExecutor{results: []execshell.ExecutionResult{{StandardOutput: "git@github.com:arktecquant/devkit.git\n"}}}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	remoteURL, remoteError := repositoryManager.GetRemoteURL(context.Background(), repositoryPathConstant, "origin")
	require.NoError(testInstance, remoteError)
	require.Equal(testInstance, "git@github.com:arktecquant/devkit.git", remoteURL)
	require.Equal(testInstance, []string{"remote", "get-url", "origin"}, executor.executedDetails[0].Arguments)
}

func TestRepositoryManagerStageCommitPushFetch(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	executionContext := context.Background()

	require.NoError(testInstance, repositoryManager.StageAllChanges(executionContext, repositoryPathConstant))
	require.NoError(testInstance, repositoryManager.CreateCommit(executionContext, repositoryPathConstant, "Update docs"))
	require.NoError(testInstance, repositoryManager.PushBranch(executionContext, repositoryPathConstant, "origin", "main"))
	require.NoError(testInstance, repositoryManager.FetchWithoutSubmodules(executionContext, repositoryPathConstant, "origin"))

	require.Len(testInstance, executor.executedDetails, 4)
	require.Equal(testInstance, []string{"add", "--all"}, executor.executedDetails[0].Arguments)
	require.Equal(testInstance, []string{"commit", "-m", "Update docs"}, executor.executedDetails[1].Arguments)
	require.Equal(testInstance, []string{"push", "origin", "main"}, executor.executedDetails[2].Arguments)
	require.Equal(testInstance, []string{"fetch", "--no-recurse-submodules", "origin"}, executor.executedDetails[3].Arguments)

	require.Empty(testInstance, executor.executedDetails[0].EnvironmentVariables)
	require.Equal(testInstance, "0", executor.executedDetails[2].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
	require.Equal(testInstance, "0", executor.executedDetails[3].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestRepositoryManagerFetchWithoutRemoteName(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, repositoryManager.FetchWithoutSubmodules(context.Background(), repositoryPathConstant, "  "))
	require.Equal(testInstance, []string{"fetch", "--no-recurse-submodules"}, executor.executedDetails[0].Arguments)
}

func TestRepositoryManagerValidation(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	executionContext := context.Background()

	_, cleanError := repositoryManager.CheckCleanWorktree(executionContext, " ")
	require.ErrorIs(testInstance, cleanError, gitrepo.ErrRepositoryPathRequired)

	commitError := repositoryManager.CreateCommit(executionContext, repositoryPathConstant, "")
	require.ErrorIs(testInstance, commitError, gitrepo.ErrCommitMessageRequired)

	pushError := repositoryManager.PushBranch(executionContext, repositoryPathConstant, "", "main")
	require.ErrorIs(testInstance, pushError, gitrepo.ErrRemoteNameRequired)

	branchError := repositoryManager.PushBranch(executionContext, repositoryPathConstant, "origin", "")
	require.ErrorIs(testInstance, branchError, gitrepo.ErrBranchNameRequired)

	_, remoteError := repositoryManager.GetRemoteURL(executionContext, repositoryPathConstant, "")
	require.ErrorIs(testInstance, remoteError, gitrepo.ErrRemoteNameRequired)

	require.Empty(testInstance, executor.executedDetails)
}

func TestRepositoryManagerSurfacesExecutorFailures(testInstance *testing.T) {
	commandFailure := errors.New("exit status 1")
	executor := &scriptedGitExecutor{executionErrors: []error{commandFailure}}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	commitError := repositoryManager.CreateCommit(context.Background(), repositoryPathConstant, "Update")
	require.ErrorIs(testInstance, commitError, commandFailure)
	require.Contains(testInstance, commitError.Error(), "git commit failed")
}

package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arktecquant/devkit/internal/execshell"
	"github.com/arktecquant/devkit/internal/gitrepo"
	"github.com/arktecquant/devkit/internal/publish"
)

const (
	gitExecutableConstant            = "git"
	originRemoteNameConstant         = "origin"
	integrationTimeoutConstant       = 30 * time.Second
	trackedFileNameConstant          = "notes.txt"
	committerNameConstant            = "Integration Tester"
	committerEmailConstant           = "integration@example.com"
	missingRemotePathConstant        = "/nonexistent/devkit-origin.git"
	defaultCommitMessageConstant     = "Update"
	multiWordCommitMessageConstant   = "Fix retry backoff in uploader"
	gitMissingSkipMessageConstant    = "git executable not available"
	identityConfigScopeFlagConstant  = "--local"
	identityUserNameKeyConstant      = "user.name"
	identityUserEmailKeyConstant     = "user.email"
	commitGPGSignKeyConstant         = "commit.gpgsign"
	commitGPGSignDisabledConstant    = "false"
	initialCommitMessageConstant     = "Initial commit"
	initialTrackedFileNameConstant   = "README.md"
	initialTrackedContentConstant    = "integration fixture\n"
	updatedTrackedContentConstant    = "integration fixture update\n"
	bareRepositoryDirectoryConstant  = "origin.git"
	workRepositoryDirectoryConstant  = "work"
	filePermissionsConstant          = 0o644
	currentBranchArgumentConstant    = "--abbrev-ref"
	currentBranchReferenceConstant   = "HEAD"
	revParseSubcommandConstant       = "rev-parse"
	commitMessageTrailingNewlineByte = "\n"
)

func requireGitExecutable(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(gitExecutableConstant); lookupError != nil {
		testInstance.Skip(gitMissingSkipMessageConstant)
	}
}

func runGitCommand(testInstance *testing.T, repositoryPath string, arguments ...string) string {
	testInstance.Helper()

	executionContext, cancelFunction := context.WithTimeout(context.Background(), integrationTimeoutConstant)
	defer cancelFunction()

	command := exec.CommandContext(executionContext, gitExecutableConstant, arguments...)
	command.Dir = repositoryPath
	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return string(outputBytes)
}

// initializePublishFixture creates a working repository with one commit and a
// local bare repository registered as origin.
func initializePublishFixture(testInstance *testing.T) (string, string) {
	testInstance.Helper()

	fixtureRoot := testInstance.TempDir()
	bareRepositoryPath := filepath.Join(fixtureRoot, bareRepositoryDirectoryConstant)
	workRepositoryPath := filepath.Join(fixtureRoot, workRepositoryDirectoryConstant)

	require.NoError(testInstance, os.MkdirAll(bareRepositoryPath, 0o755))
	require.NoError(testInstance, os.MkdirAll(workRepositoryPath, 0o755))

	runGitCommand(testInstance, bareRepositoryPath, "init", "--bare")
	runGitCommand(testInstance, workRepositoryPath, "init")
	runGitCommand(testInstance, workRepositoryPath, "config", identityConfigScopeFlagConstant, identityUserNameKeyConstant, committerNameConstant)
	runGitCommand(testInstance, workRepositoryPath, "config", identityConfigScopeFlagConstant, identityUserEmailKeyConstant, committerEmailConstant)
	runGitCommand(testInstance, workRepositoryPath, "config", identityConfigScopeFlagConstant, commitGPGSignKeyConstant, commitGPGSignDisabledConstant)
	runGitCommand(testInstance, workRepositoryPath, "remote", "add", originRemoteNameConstant, bareRepositoryPath)

	initialFilePath := filepath.Join(workRepositoryPath, initialTrackedFileNameConstant)
	require.NoError(testInstance, os.WriteFile(initialFilePath, []byte(initialTrackedContentConstant), filePermissionsConstant))
	runGitCommand(testInstance, workRepositoryPath, "add", "--all")
	runGitCommand(testInstance, workRepositoryPath, "commit", "-m", initialCommitMessageConstant)

	return workRepositoryPath, bareRepositoryPath
}

func buildPublishService(testInstance *testing.T) *publish.Service {
	testInstance.Helper()

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	require.NoError(testInstance, managerError)

	publishService, serviceError := publish.NewService(publish.Dependencies{RepositoryManager: repositoryManager})
	require.NoError(testInstance, serviceError)

	return publishService
}

func currentBranchName(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	branchOutput := runGitCommand(testInstance, repositoryPath, revParseSubcommandConstant, currentBranchArgumentConstant, currentBranchReferenceConstant)
	return strings.TrimSpace(branchOutput)
}

func headCommitMessage(testInstance *testing.T, repositoryPath string, branchName string) string {
	testInstance.Helper()

	repository, openError := gogit.PlainOpen(repositoryPath)
	require.NoError(testInstance, openError)

	branchReference, referenceError := repository.Reference(plumbing.NewBranchReferenceName(branchName), true)
	require.NoError(testInstance, referenceError)

	commitObject, commitError := repository.CommitObject(branchReference.Hash())
	require.NoError(testInstance, commitError)

	return commitObject.Message
}

func TestPublishCommitsAndPushesToOrigin(testInstance *testing.T) {
	requireGitExecutable(testInstance)

	workRepositoryPath, bareRepositoryPath := initializePublishFixture(testInstance)
	publishService := buildPublishService(testInstance)

	changedFilePath := filepath.Join(workRepositoryPath, trackedFileNameConstant)
	require.NoError(testInstance, os.WriteFile(changedFilePath, []byte(updatedTrackedContentConstant), filePermissionsConstant))

	publishResult, publishError := publishService.Publish(context.Background(), publish.Options{
		RepositoryPath: workRepositoryPath,
		CommitMessage:  defaultCommitMessageConstant,
		RemoteName:     originRemoteNameConstant,
	})
	require.NoError(testInstance, publishError)
	require.True(testInstance, publishResult.Pushed)
	require.NoError(testInstance, publishResult.PushFailure)
	require.True(testInstance, publishResult.Fetched)
	require.NoError(testInstance, publishResult.FetchFailure)
	require.Equal(testInstance, defaultCommitMessageConstant, publishResult.CommitMessage)

	branchName := currentBranchName(testInstance, workRepositoryPath)
	require.Equal(testInstance, branchName, publishResult.BranchName)

	pushedMessage := headCommitMessage(testInstance, bareRepositoryPath, branchName)
	require.Equal(testInstance, defaultCommitMessageConstant+commitMessageTrailingNewlineByte, pushedMessage)
}

func TestPublishUsesMultiWordMessageVerbatim(testInstance *testing.T) {
	requireGitExecutable(testInstance)

	workRepositoryPath, bareRepositoryPath := initializePublishFixture(testInstance)
	publishService := buildPublishService(testInstance)

	changedFilePath := filepath.Join(workRepositoryPath, trackedFileNameConstant)
	require.NoError(testInstance, os.WriteFile(changedFilePath, []byte(updatedTrackedContentConstant), filePermissionsConstant))

	publishResult, publishError := publishService.Publish(context.Background(), publish.Options{
		RepositoryPath: workRepositoryPath,
		CommitMessage:  multiWordCommitMessageConstant,
		RemoteName:     originRemoteNameConstant,
	})
	require.NoError(testInstance, publishError)
	require.True(testInstance, publishResult.Pushed)

	branchName := currentBranchName(testInstance, workRepositoryPath)
	pushedMessage := headCommitMessage(testInstance, bareRepositoryPath, branchName)
	require.Equal(testInstance, multiWordCommitMessageConstant+commitMessageTrailingNewlineByte, pushedMessage)
}

func TestPublishFailsWhenNothingToCommit(testInstance *testing.T) {
	requireGitExecutable(testInstance)

	workRepositoryPath, bareRepositoryPath := initializePublishFixture(testInstance)
	publishService := buildPublishService(testInstance)

	_, publishError := publishService.Publish(context.Background(), publish.Options{
		RepositoryPath: workRepositoryPath,
		CommitMessage:  defaultCommitMessageConstant,
		RemoteName:     originRemoteNameConstant,
	})
	require.Error(testInstance, publishError)
	require.Contains(testInstance, publishError.Error(), "failed to create commit")

	// The commit never happened, so nothing was pushed to origin.
	bareRepository, openError := gogit.PlainOpen(bareRepositoryPath)
	require.NoError(testInstance, openError)
	referenceIterator, iteratorError := bareRepository.References()
	require.NoError(testInstance, iteratorError)
	branchReferenceCount := 0
	iterationError := referenceIterator.ForEach(func(reference *plumbing.Reference) error {
		if reference.Name().IsBranch() {
			branchReferenceCount++
		}
		return nil
	})
	require.NoError(testInstance, iterationError)
	require.Zero(testInstance, branchReferenceCount)
}

func TestPublishRecordsPushFailureWithoutFailing(testInstance *testing.T) {
	requireGitExecutable(testInstance)

	workRepositoryPath, _ := initializePublishFixture(testInstance)
	runGitCommand(testInstance, workRepositoryPath, "remote", "set-url", originRemoteNameConstant, missingRemotePathConstant)
	publishService := buildPublishService(testInstance)

	changedFilePath := filepath.Join(workRepositoryPath, trackedFileNameConstant)
	require.NoError(testInstance, os.WriteFile(changedFilePath, []byte(updatedTrackedContentConstant), filePermissionsConstant))

	publishResult, publishError := publishService.Publish(context.Background(), publish.Options{
		RepositoryPath: workRepositoryPath,
		CommitMessage:  defaultCommitMessageConstant,
		RemoteName:     originRemoteNameConstant,
	})
	require.NoError(testInstance, publishError)
	require.False(testInstance, publishResult.Pushed)
	require.Error(testInstance, publishResult.PushFailure)
	require.False(testInstance, publishResult.Fetched)
	require.Error(testInstance, publishResult.FetchFailure)

	// The commit still landed locally.
	branchName := currentBranchName(testInstance, workRepositoryPath)
	localMessage := headCommitMessage(testInstance, workRepositoryPath, branchName)
	require.Equal(testInstance, defaultCommitMessageConstant+commitMessageTrailingNewlineByte, localMessage)
}

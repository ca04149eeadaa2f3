package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arktecquant/devkit/internal/execshell"
)

const (
	statusSubcommandConstant               = "status"
	porcelainFlagConstant                  = "--porcelain"
	revParseSubcommandConstant             = "rev-parse"
	abbreviatedReferenceFlagConstant       = "--abbrev-ref"
	headReferenceConstant                  = "HEAD"
	remoteSubcommandConstant               = "remote"
	remoteGetURLSubcommandConstant         = "get-url"
	addSubcommandConstant                  = "add"
	addAllFlagConstant                     = "--all"
	commitSubcommandConstant               = "commit"
	commitMessageFlagConstant              = "-m"
	pushSubcommandConstant                 = "push"
	fetchSubcommandConstant                = "fetch"
	noRecurseSubmodulesFlagConstant        = "--no-recurse-submodules"
	terminalPromptEnvironmentKeyConstant   = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant    = "0"
	requiredValueMessageConstant           = "value required"
	executorNotConfiguredMessageConstant   = "git executor not configured"
	repositoryPathRequiredMessageConstant  = "repository path required"
	remoteNameRequiredMessageConstant      = "remote name required"
	branchNameRequiredMessageConstant      = "branch name required"
	commitMessageRequiredMessageConstant   = "commit message required"
	detachedHeadMessageConstant            = "repository is in detached HEAD state"
	gitOperationFailedTemplateConstant     = "git %s failed: %w"
	remoteURLFailedTemplateConstant        = "unable to resolve url for remote %s: %w"
)

// Sentinel errors reported by RepositoryManager.
var (
	ErrExecutorNotConfigured  = errors.New(executorNotConfiguredMessageConstant)
	ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)
	ErrRemoteNameRequired     = errors.New(remoteNameRequiredMessageConstant)
	ErrBranchNameRequired     = errors.New(branchNameRequiredMessageConstant)
	ErrCommitMessageRequired  = errors.New(commitMessageRequiredMessageConstant)
	ErrDetachedHead           = errors.New(detachedHeadMessageConstant)
)

// GitExecutor describes the command execution capability RepositoryManager relies on.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs structured git operations against a working tree.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// CheckCleanWorktree reports whether the repository has no staged or unstaged changes.
func (repositoryManager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := repositoryManager.runGit(executionContext, repositoryPath, false, statusSubcommandConstant, porcelainFlagConstant)
	if executionError != nil {
		return false, fmt.Errorf(gitOperationFailedTemplateConstant, statusSubcommandConstant, executionError)
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch resolves the checked out branch name and rejects detached HEAD states.
func (repositoryManager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := repositoryManager.runGit(executionContext, repositoryPath, false, revParseSubcommandConstant, abbreviatedReferenceFlagConstant, headReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(gitOperationFailedTemplateConstant, revParseSubcommandConstant, executionError)
	}

	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if branchName == headReferenceConstant {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// GetRemoteURL resolves the configured URL for the named remote.
func (repositoryManager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return "", ErrRemoteNameRequired
	}

	executionResult, executionError := repositoryManager.runGit(executionContext, repositoryPath, false, remoteSubcommandConstant, remoteGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		return "", fmt.Errorf(remoteURLFailedTemplateConstant, remoteName, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// StageAllChanges stages every tracked and untracked modification in the working tree.
func (repositoryManager *RepositoryManager) StageAllChanges(executionContext context.Context, repositoryPath string) error {
	_, executionError := repositoryManager.runGit(executionContext, repositoryPath, false, addSubcommandConstant, addAllFlagConstant)
	if executionError != nil {
		return fmt.Errorf(gitOperationFailedTemplateConstant, addSubcommandConstant, executionError)
	}
	return nil
}

// CreateCommit records a commit carrying the provided message verbatim.
func (repositoryManager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	if len(commitMessage) == 0 {
		return ErrCommitMessageRequired
	}

	_, executionError := repositoryManager.runGit(executionContext, repositoryPath, false, commitSubcommandConstant, commitMessageFlagConstant, commitMessage)
	if executionError != nil {
		return fmt.Errorf(gitOperationFailedTemplateConstant, commitSubcommandConstant, executionError)
	}
	return nil
}

// PushBranch pushes the named branch to the named remote without allowing interactive credential prompts.
func (repositoryManager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return ErrRemoteNameRequired
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return ErrBranchNameRequired
	}

	_, executionError := repositoryManager.runGit(executionContext, repositoryPath, true, pushSubcommandConstant, remoteName, branchName)
	if executionError != nil {
		return fmt.Errorf(gitOperationFailedTemplateConstant, pushSubcommandConstant, executionError)
	}
	return nil
}

// FetchWithoutSubmodules fetches the named remote while skipping submodule recursion.
func (repositoryManager *RepositoryManager) FetchWithoutSubmodules(executionContext context.Context, repositoryPath string, remoteName string) error {
	fetchArguments := []string{fetchSubcommandConstant, noRecurseSubmodulesFlagConstant}
	if len(strings.TrimSpace(remoteName)) > 0 {
		fetchArguments = append(fetchArguments, remoteName)
	}

	_, executionError := repositoryManager.runGit(executionContext, repositoryPath, true, fetchArguments...)
	if executionError != nil {
		return fmt.Errorf(gitOperationFailedTemplateConstant, fetchSubcommandConstant, executionError)
	}
	return nil
}

func (repositoryManager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, disableTerminalPrompt bool, arguments ...string) (execshell.ExecutionResult, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	}
	if disableTerminalPrompt {
		commandDetails.EnvironmentVariables = map[string]string{terminalPromptEnvironmentKeyConstant: terminalPromptDisabledValueConstant}
	}

	return repositoryManager.gitExecutor.ExecuteGit(executionContext, commandDetails)
}

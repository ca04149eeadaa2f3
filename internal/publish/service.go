package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arktecquant/devkit/internal/gitrepo"
)

const (
	repositoryPathRequiredMessageConstant   = "repository path must be provided"
	commitMessageRequiredMessageConstant    = "commit message must be provided"
	remoteNameRequiredMessageConstant       = "remote name must be provided"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	stageFailureTemplateConstant            = "failed to stage changes: %w"
	commitFailureTemplateConstant           = "failed to create commit: %w"
	branchResolutionFailureTemplateConstant = "unable to resolve current branch: %w"
	pushFailureTemplateConstant             = "push to %s failed: %w"
	fetchFailureTemplateConstant            = "fetch from %s failed: %w"
	remoteRepositoryTemplateConstant        = "%s/%s"
)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrCommitMessageRequired indicates the effective commit message was empty.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// ErrRemoteNameRequired indicates the remote name option was empty.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// RepositoryManager enumerates the git operations the publishing workflow performs.
type RepositoryManager interface {
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	StageAllChanges(executionContext context.Context, repositoryPath string) error
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	FetchWithoutSubmodules(executionContext context.Context, repositoryPath string, remoteName string) error
}

// Dependencies enumerates external collaborators required for publishing.
type Dependencies struct {
	RepositoryManager RepositoryManager
}

// Options configures a publish operation.
type Options struct {
	RepositoryPath string
	CommitMessage  string
	RemoteName     string
}

// Result captures the observable outcomes of a publish operation.
//
// PushFailure and FetchFailure are populated instead of returned because
// neither outcome affects the exit status once the commit has been recorded.
type Result struct {
	RepositoryPath   string
	CommitMessage    string
	BranchName       string
	RemoteRepository string
	Pushed           bool
	PushFailure      error
	Fetched          bool
	FetchFailure     error
}

// Service coordinates the publishing workflow through git.
type Service struct {
	repositoryManager RepositoryManager
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	return &Service{repositoryManager: dependencies.RepositoryManager}, nil
}

// Publish stages, commits, pushes, and fetches according to the provided options.
//
// A staging or commit failure aborts the workflow and is returned as the
// error. Push and fetch are attempted after every successful commit and their
// failures are recorded on the Result.
func (service *Service) Publish(executionContext context.Context, options Options) (Result, error) {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}

	// The commit message is used verbatim, so only emptiness is rejected.
	if len(options.CommitMessage) == 0 {
		return Result{}, ErrCommitMessageRequired
	}

	trimmedRemoteName := strings.TrimSpace(options.RemoteName)
	if len(trimmedRemoteName) == 0 {
		return Result{}, ErrRemoteNameRequired
	}

	publishResult := Result{
		RepositoryPath: trimmedRepositoryPath,
		CommitMessage:  options.CommitMessage,
	}

	if stageError := service.repositoryManager.StageAllChanges(executionContext, trimmedRepositoryPath); stageError != nil {
		return publishResult, fmt.Errorf(stageFailureTemplateConstant, stageError)
	}

	if commitError := service.repositoryManager.CreateCommit(executionContext, trimmedRepositoryPath, options.CommitMessage); commitError != nil {
		return publishResult, fmt.Errorf(commitFailureTemplateConstant, commitError)
	}

	publishResult.RemoteRepository = service.resolveRemoteRepository(executionContext, trimmedRepositoryPath, trimmedRemoteName)

	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, trimmedRepositoryPath)
	if branchError != nil {
		publishResult.PushFailure = fmt.Errorf(branchResolutionFailureTemplateConstant, branchError)
	} else {
		publishResult.BranchName = branchName
		if pushError := service.repositoryManager.PushBranch(executionContext, trimmedRepositoryPath, trimmedRemoteName, branchName); pushError != nil {
			publishResult.PushFailure = fmt.Errorf(pushFailureTemplateConstant, trimmedRemoteName, pushError)
		} else {
			publishResult.Pushed = true
		}
	}

	if fetchError := service.repositoryManager.FetchWithoutSubmodules(executionContext, trimmedRepositoryPath, trimmedRemoteName); fetchError != nil {
		publishResult.FetchFailure = fmt.Errorf(fetchFailureTemplateConstant, trimmedRemoteName, fetchError)
	} else {
		publishResult.Fetched = true
	}

	return publishResult, nil
}

// resolveRemoteRepository derives the owner/repository pair from the remote
// URL. Resolution is best effort: local-path remotes and repositories without
// the named remote simply leave the field empty.
func (service *Service) resolveRemoteRepository(executionContext context.Context, repositoryPath string, remoteName string) string {
	remoteURL, remoteURLError := service.repositoryManager.GetRemoteURL(executionContext, repositoryPath, remoteName)
	if remoteURLError != nil {
		return ""
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return ""
	}

	return fmt.Sprintf(remoteRepositoryTemplateConstant, parsedRemote.Owner, parsedRemote.Repository)
}

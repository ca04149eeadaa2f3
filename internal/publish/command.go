package publish

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arktecquant/devkit/internal/execshell"
	"github.com/arktecquant/devkit/internal/gitrepo"
	"github.com/arktecquant/devkit/internal/ui"
)

const (
	commandUseConstant                    = "publish [commit-message]"
	commandShortDescriptionConstant       = "Stage, commit, push, and fetch pending changes"
	commandLongDescriptionConstant        = "publish stages every pending change, records a commit with the provided message (or the configured default), pushes the current branch to the configured remote, and fetches the remote without recursing into submodules.\n\nOnly the commit step is fatal: push and fetch failures are reported without changing the exit status."
	publishSuccessMessageTemplateConstant = "PUBLISHED: %s (%s)\n"
	pushFailureNoticeTemplateConstant     = "WARNING: %v\n"
	fetchFailureNoticeTemplateConstant    = "WARNING: %v\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the publish command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	RepositoryManager            RepositoryManager
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	WorkingDirectoryResolver     func() (string, error)
}

// Build constructs the publish command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	// A provided message is carried verbatim; only absence selects the default.
	commitMessage := configuration.DefaultMessage
	if len(arguments) > 0 && len(arguments[0]) > 0 {
		commitMessage = arguments[0]
	}

	repositoryPath, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	repositoryManager, managerError := builder.resolveRepositoryManager()
	if managerError != nil {
		return managerError
	}

	service, serviceCreationError := NewService(Dependencies{RepositoryManager: repositoryManager})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	publishResult, publishError := service.Publish(command.Context(), Options{
		RepositoryPath: repositoryPath,
		CommitMessage:  commitMessage,
		RemoteName:     configuration.Remote,
	})
	if publishError != nil {
		return publishError
	}

	if publishResult.PushFailure != nil {
		fmt.Fprintf(command.ErrOrStderr(), pushFailureNoticeTemplateConstant, publishResult.PushFailure)
	}
	if publishResult.FetchFailure != nil {
		fmt.Fprintf(command.ErrOrStderr(), fetchFailureNoticeTemplateConstant, publishResult.FetchFailure)
	}

	publishTarget := publishResult.RepositoryPath
	if len(publishResult.RemoteRepository) > 0 {
		publishTarget = publishResult.RemoteRepository
	}
	fmt.Fprintf(command.OutOrStdout(), publishSuccessMessageTemplateConstant, publishTarget, publishResult.CommitMessage)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if builder.WorkingDirectoryResolver != nil {
		return builder.WorkingDirectoryResolver()
	}
	return os.Getwd()
}

func (builder *CommandBuilder) resolveRepositoryManager() (RepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}

	gitExecutor, executorError := builder.resolveGitExecutor()
	if executorError != nil {
		return nil, executorError
	}

	return gitrepo.NewRepositoryManager(gitExecutor)
}

func (builder *CommandBuilder) resolveGitExecutor() (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
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

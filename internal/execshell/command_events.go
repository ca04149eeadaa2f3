package execshell

import "go.uber.org/zap"

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports unexpected failures prior to receiving an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// loggingCommandEventObserver renders command events through a structured logger.
type loggingCommandEventObserver struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

func newLoggingCommandEventObserver(logger *zap.Logger) loggingCommandEventObserver {
	return loggingCommandEventObserver{logger: logger, formatter: CommandMessageFormatter{}}
}

// CommandStarted logs the start notification at info level.
func (observer loggingCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Info(observer.formatter.BuildStartedMessage(command))
}

// CommandCompleted logs success at info level and non-zero exit codes at warn level.
func (observer loggingCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Info(observer.formatter.BuildSuccessMessage(command))
		return
	}
	observer.logger.Warn(observer.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed logs unexpected execution failures at error level.
func (observer loggingCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(observer.formatter.BuildExecutionFailureMessage(command, failure))
}

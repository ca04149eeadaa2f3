package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	valuePromptWithDefaultTemplateConstant = "%s [%s]: "
	valuePromptTemplateConstant            = "%s: "
	prompterReaderMissingMessageConstant   = "prompter reader not configured"
	prompterWriterMissingMessageConstant   = "prompter writer not configured"
)

// Sentinel errors reported by IOValuePrompter.
var (
	ErrPrompterReaderMissing = errors.New(prompterReaderMissingMessageConstant)
	ErrPrompterWriterMissing = errors.New(prompterWriterMissingMessageConstant)
)

// IOValuePrompter collects interactive values and confirmations from reader and writer streams.
type IOValuePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOValuePrompter constructs a prompter reading answers from reader and printing prompts to writer.
func NewIOValuePrompter(reader io.Reader, writer io.Writer) (*IOValuePrompter, error) {
	if reader == nil {
		return nil, ErrPrompterReaderMissing
	}
	if writer == nil {
		return nil, ErrPrompterWriterMissing
	}
	return &IOValuePrompter{reader: bufio.NewReader(reader), writer: writer}, nil
}

// PromptForValue asks for a value and falls back to defaultValue when the answer is blank.
func (prompter *IOValuePrompter) PromptForValue(promptLabel string, defaultValue string) (string, error) {
	if len(defaultValue) > 0 {
		fmt.Fprintf(prompter.writer, valuePromptWithDefaultTemplateConstant, promptLabel, defaultValue)
	} else {
		fmt.Fprintf(prompter.writer, valuePromptTemplateConstant, promptLabel)
	}

	answer, readError := prompter.readLine()
	if readError != nil {
		return "", readError
	}
	if len(answer) == 0 {
		return defaultValue, nil
	}
	return answer, nil
}

func (prompter *IOValuePrompter) readLine() (string, error) {
	line, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return "", readError
	}
	return strings.TrimSpace(line), nil
}

package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"budgetree/internal/ports"
)

// Opener implements ports.EditorOpener
type Opener struct {
	editor string // overrides the environment when set
}

// Ensure Opener implements ports.EditorOpener
var _ ports.EditorOpener = (*Opener)(nil)

// NewOpener creates a new editor opener
func NewOpener() *Opener {
	return &Opener{}
}

// WithEditor returns an opener that always uses the given command
func WithEditor(editor string) *Opener {
	return &Opener{editor: editor}
}

// Run edits memory in the foreground and returns the edited text
func (o *Opener) Run(memory string) (string, error) {
	cmd, finish, err := o.EditMemory(memory)
	if err != nil {
		return memory, err
	}
	if err := cmd.Run(); err != nil {
		finish()
		return memory, fmt.Errorf("editor failed: %w", err)
	}
	return finish()
}

// EditMemory writes memory to a temp file for the editor
func (o *Opener) EditMemory(memory string) (*exec.Cmd, func() (string, error), error) {
	f, err := os.CreateTemp("", "budgetree-memory-*.txt")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(memory); err != nil {
		f.Close()
		os.Remove(path)
		return nil, nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	cmd, err := o.Command(path)
	if err != nil {
		os.Remove(path)
		return nil, nil, err
	}

	finish := func() (string, error) {
		defer os.Remove(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return memory, fmt.Errorf("failed to read edited memory: %w", err)
		}
		// Editors append a final newline
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return cmd, finish, nil
}

// Command returns an exec.Cmd for opening a file in the editor
// This is useful for integrating with bubbletea's ExecProcess
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	// $EDITOR may carry flags, e.g. "code --wait"
	fields := strings.Fields(editor)
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	if o.editor != "" {
		return o.editor
	}

	// Check $EDITOR first
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}

	// Check $VISUAL
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}

	// Try common editors
	editors := []string{"nvim", "vim", "vi", "nano", "code"}
	for _, editor := range editors {
		if path, err := exec.LookPath(editor); err == nil {
			return path
		}
	}

	return ""
}

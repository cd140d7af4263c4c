package ports

import "os/exec"

// EditorOpener hands an item's calculation memory to the user's editor
type EditorOpener interface {
	// Command returns an exec.Cmd for opening a file in the editor.
	// Useful for bubbletea's ExecProcess.
	Command(path string) (*exec.Cmd, error)

	// EditMemory writes memory to a temp file and returns the editor
	// command plus a function that reads the edited text back and removes
	// the file. The command must have run before the function is called.
	EditMemory(memory string) (*exec.Cmd, func() (string, error), error)
}

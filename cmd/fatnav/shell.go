package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aligator/fatnav"
)

// shellPrompt is printed before every input line.
const shellPrompt = "fatnav> "

// shell is an interactive session on one volume. The volume keeps the
// working directory between commands.
type shell struct {
	volume *fatnav.Volume
	out    io.Writer
	errOut io.Writer
}

// run reads commands line by line until exit or the end of the input.
// Command errors are printed and the loop continues, only the exit command
// or a failing reader end the session.
func (s *shell) run(in io.Reader) error {
	fmt.Fprintf(s.out, "Volume %q, type %s\n", s.volume.Label(), s.volume.Type())
	fmt.Fprintf(s.out, "Current directory: %s\n", s.volume.WorkingDirectory())
	fmt.Fprintln(s.out, "Type 'help' for the command list.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, shellPrompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if s.dispatch(scanner.Text()) {
			return nil
		}
	}
}

// dispatch executes a single command line and reports whether the session
// should end.
func (s *shell) dispatch(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "ls", "list":
		path := "."
		if len(parts) > 1 {
			path = parts[1]
		}
		s.list(path)
	case "cat", "read":
		if len(parts) < 2 {
			fmt.Fprintln(s.errOut, "Usage: cat <file>")
			return false
		}
		s.cat(parts[1])
	case "cd":
		path := fatnav.Separator
		if len(parts) > 1 {
			path = parts[1]
		}
		if err := s.volume.ChangeDirectory(path); err != nil {
			s.printError(err)
		}
	case "pwd":
		fmt.Fprintln(s.out, s.volume.WorkingDirectory())
	case "create":
		if len(parts) < 2 {
			fmt.Fprintln(s.errOut, "Usage: create <path>")
			return false
		}
		if err := s.volume.CreateFile(parts[1]); err != nil {
			s.printError(err)
			return false
		}
		fmt.Fprintf(s.out, "Created file: %s\n", parts[1])
	case "write":
		if len(parts) < 3 {
			fmt.Fprintln(s.errOut, "Usage: write <path> <data>")
			return false
		}
		data := []byte(strings.Join(parts[2:], " "))
		if err := s.volume.WriteFile(parts[1], data); err != nil {
			s.printError(err)
			return false
		}
		fmt.Fprintf(s.out, "Wrote %d bytes to: %s\n", len(data), parts[1])
	case "help", "?":
		s.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	default:
		fmt.Fprintf(s.errOut, "Unknown command: %s. Type 'help' for help.\n", parts[0])
	}

	return false
}

func (s *shell) list(path string) {
	entries, err := s.volume.List(path)
	if err != nil {
		s.printError(err)
		return
	}
	printEntries(s.out, entries)
}

func (s *shell) cat(path string) {
	data, err := s.volume.ReadFile(path)
	if err != nil {
		s.printError(err)
		return
	}
	printFileData(s.out, data)
}

func (s *shell) printError(err error) {
	fmt.Fprintf(s.errOut, "Error: %v\n", err)
}

func (s *shell) printHelp() {
	fmt.Fprint(s.out, `Available commands:
  ls [path]            - List directory contents
  cat <file>           - Read and display a file
  cd [path]            - Change directory
  pwd                  - Print the current directory
  create <path>        - Create a new file
  write <path> <data>  - Write data to a file
  help                 - Show this help
  exit/quit/q          - End the session
`)
}

// printEntries prints one entry per line, directories get a trailing slash.
func printEntries(out io.Writer, entries []fatnav.DirectoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "(empty)")
		return
	}

	for _, entry := range entries {
		marker := ""
		if entry.IsDirectory() {
			marker = "/"
		}
		fmt.Fprintf(out, "%s%s\n", entry.Name(), marker)
	}
}

// printFileData prints text content as is. Content that is no valid UTF-8 is
// replaced by a size hint to keep the terminal intact.
func printFileData(out io.Writer, data []byte) {
	if !utf8.Valid(data) {
		fmt.Fprintf(out, "<binary data, %d bytes>\n", len(data))
		return
	}
	fmt.Fprint(out, string(data))
}

package domain

import "strings"

// Command is a parsed mention: the first token and everything after it.
type Command struct {
	Name string
	Args []string
}

func ParseCommand(message string) Command {
	parts := strings.Fields(message)
	if len(parts) == 0 {
		return Command{}
	}
	return Command{Name: parts[0], Args: parts[1:]}
}

// Arg returns the i-th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Handle reads the first argument as an @handle.
func (c Command) Handle() (string, bool) {
	arg := c.Arg(0)
	if !strings.HasPrefix(arg, HandleSigil) {
		return InvalidHandle, false
	}
	return strings.TrimPrefix(arg, HandleSigil), true
}

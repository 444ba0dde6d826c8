package interact

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
)

// ConsoleNotifier prints notices for a terminal operator.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n ConsoleNotifier) Notify(ctx context.Context, notice domain.Notice) {
	prefix := ""
	switch notice.Level {
	case domain.NoticeWarning:
		prefix = "warning: "
	case domain.NoticeError:
		prefix = "error: "
	}
	fmt.Fprintln(n.Out, prefix+notice.Message)
}

// ConsoleConfirmer asks a y/N question on In unless AssumeYes is set.
type ConsoleConfirmer struct {
	In        io.Reader
	Out       io.Writer
	AssumeYes bool
}

func (c ConsoleConfirmer) Confirm(ctx context.Context, prompt string) bool {
	if c.AssumeYes {
		return true
	}
	fmt.Fprintf(c.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/florinato/mongoagent/internal/agent"
	"github.com/florinato/mongoagent/internal/service"
	"github.com/florinato/mongoagent/internal/session"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	outputStyle  = lipgloss.NewStyle().Faint(true)
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// printer writes conversation progress. On a terminal, commands are
// syntax highlighted and answers rendered as markdown; elsewhere output is
// plain text.
type printer struct {
	out   io.Writer
	color bool
	md    *glamour.TermRenderer
}

func newPrinter(out io.Writer) *printer {
	p := &printer{out: out}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.color = true
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
			p.md = r
		}
	}
	return p
}

func (p *printer) command(cmd string) {
	if !p.color {
		fmt.Fprintln(p.out, "> "+cmd)
		return
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, cmd, "javascript", "terminal256", "monokai"); err != nil {
		fmt.Fprintln(p.out, commandStyle.Render("> "+cmd))
		return
	}
	fmt.Fprintln(p.out, commandStyle.Render("> ")+strings.TrimRight(buf.String(), "\n"))
}

func (p *printer) output(text string) {
	fmt.Fprintln(p.out, outputStyle.Render(text))
}

func (p *printer) answer(text string) {
	if p.md != nil {
		if rendered, err := p.md.Render(text); err == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, answerStyle.Render(text))
}

func (p *printer) confirmation(cmd string) {
	fmt.Fprintln(p.out, warnStyle.Render("Confirmation required: ")+commandStyle.Render(cmd))
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintln(p.out, errorStyle.Render("Error: "+fmt.Sprintf(format, args...)))
}

// turns prints command and output turns appended after index from,
// returning the new history length.
func (p *printer) turns(svc *service.Service, id string, from int) int {
	turns, err := svc.History(id)
	if err != nil || from >= len(turns) {
		return from
	}
	for _, t := range turns[from:] {
		switch t.Role {
		case session.RoleAgentCommand:
			p.command(t.Content)
		case session.RoleSystemOutput:
			p.output(t.Content)
		}
	}
	return len(turns)
}

func (p *printer) result(res *agent.Result) {
	switch res.Status {
	case agent.StatusCompleted:
		p.answer(res.Message)
	case agent.StatusCancelled:
		fmt.Fprintln(p.out, warnStyle.Render(res.Message))
	case agent.StatusError:
		p.errorf("%s", res.Message)
	default:
		fmt.Fprintln(p.out, res.Message)
	}
}

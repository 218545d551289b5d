// Package printer provides styled terminal output for commands. A
// Printer travels on the context so command actions don't thread a
// writer through every helper.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/activus-tech/tdsctl/internal/core/styles"
)

type ctxKey struct{}

// Printer writes user-facing command output.
type Printer struct {
	out io.Writer
}

// New returns a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// WithContext attaches the printer to the context.
func WithContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer from the context, or a stdout printer when
// none is attached.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

// Printf writes a plain line.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Successf writes a success line with a leading check mark.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.out, styles.SuccessStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Success writes a success message with a muted detail suffix.
func (p *Printer) Success(msg, detail string) {
	fmt.Fprintln(p.out, styles.SuccessStyle.Render("✓ ")+msg+" "+styles.TextMutedStyle.Render(detail))
}

// Infof writes an informational line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintln(p.out, styles.TextMutedStyle.Render("• ")+fmt.Sprintf(format, args...))
}

// Errorf writes an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, styles.ErrorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

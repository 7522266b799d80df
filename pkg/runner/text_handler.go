package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/aretw0/stepwise/pkg/step"
)

// IOHandler defines the strategy for interacting with the user.
type IOHandler interface {
	// ShowStep presents the step about to be prompted.
	ShowStep(ctx context.Context, view *stepwise.View) error
	// Prompt asks for one attribute and returns the raw line typed.
	// io.EOF means no more input will arrive.
	Prompt(ctx context.Context, attr stepwise.Attribute) (string, error)
	// ShowErrors presents the messages of a rejected save.
	ShowErrors(ctx context.Context, errs schema.Errors) error
	// ShowReview presents the answers collected so far.
	ShowReview(ctx context.Context, review *stepwise.Review) error
	// ShowResult presents the outcome of a completed wizard.
	ShowResult(ctx context.Context, result any) error
	// SystemOutput presents a meta-message, distinct from step content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written.
// This allows ANSI rendering without coupling the runner to a terminal library.
type ContentRenderer func(string) (string, error)

// TextHandler implements the line-oriented terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	inputChan chan inputResult
	startOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer sets the markdown renderer used for reviews.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
// nil reader and writer default to stdin and stdout.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) ShowStep(_ context.Context, view *stepwise.View) error {
	pos := len(view.EarlierKeys) + 1
	total := pos + len(view.LaterKeys)
	title := view.Title
	if view.Personal {
		title += " (personal details)"
	}
	_, err := fmt.Fprintf(h.Writer, "\n[%d/%d] %s\n", pos, total, title)
	return err
}

func (h *TextHandler) Prompt(ctx context.Context, attr stepwise.Attribute) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-h.done:
		return "", io.EOF
	default:
	}
	label := step.Humanize(attr.Name)
	if attr.Required {
		label += "*"
	}
	if attr.Value != nil {
		label += fmt.Sprintf(" [%s]", formatValue(attr.Value))
	}
	if _, err := fmt.Fprintf(h.Writer, "%s > ", label); err != nil {
		return "", err
	}

	h.initPump()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

// initPump starts the reader goroutine so a blocked read never outlives a cancelled prompt.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// Close abandons the handler. A pump blocked on a read exits as soon as the read
// returns instead of waiting for a prompt that will never come. Close does not close
// the underlying reader.
func (h *TextHandler) Close() error {
	h.closeOnce.Do(func() {
		if h.done != nil {
			close(h.done)
		}
	})
	return nil
}

func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" && !h.send(inputResult{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF {
				h.send(inputResult{err: err})
			}
			return
		}
	}
}

// send hands a read to the waiting prompt. It reports false once the handler is closed.
func (h *TextHandler) send(res inputResult) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.inputChan <- res:
		return true
	case <-h.done:
		return false
	}
}

func (h *TextHandler) ShowErrors(_ context.Context, errs schema.Errors) error {
	for _, msg := range errs.Full() {
		if _, err := fmt.Fprintf(h.Writer, "  ! %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) ShowReview(_ context.Context, review *stepwise.Review) error {
	return h.render(ReviewMarkdown(review))
}

func (h *TextHandler) ShowResult(ctx context.Context, result any) error {
	if result == nil {
		return h.SystemOutput(ctx, "Done.")
	}
	return h.SystemOutput(ctx, fmt.Sprintf("Done: %s", formatValue(result)))
}

func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, ">>> %s\n", msg)
	return err
}

func (h *TextHandler) render(md string) error {
	output := md
	if h.Renderer != nil {
		if rendered, err := h.Renderer(md); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return err
}

// ReviewMarkdown formats a review as a markdown document with one table per step.
func ReviewMarkdown(review *stepwise.Review) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", step.Humanize(review.Wizard))
	for _, s := range review.Steps {
		status := ""
		if !s.Valid {
			status = " (incomplete)"
		}
		fmt.Fprintf(&b, "## %s%s\n\n", s.Title, status)
		b.WriteString("| Attribute | Answer |\n| --- | --- |\n")
		for _, name := range answerOrder(s) {
			fmt.Fprintf(&b, "| %s | %s |\n", step.Humanize(name), formatValue(s.Answers[name]))
		}
		b.WriteString("\n")
	}
	if !review.Complete {
		fmt.Fprintf(&b, "Still to answer: %s\n", strings.Join(review.InvalidKeys, ", "))
	}
	return b.String()
}

// answerOrder lists the step's answers in declaration order, then any extras sorted.
func answerOrder(s stepwise.ReviewStep) []string {
	seen := make(map[string]bool, len(s.Order))
	var out []string
	for _, name := range s.Order {
		if _, ok := s.Answers[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range s.Answers {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any, []string, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

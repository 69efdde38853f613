package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/totem/internal/presentation/tui"
	"github.com/aretw0/totem/pkg/domain"
)

// Engine is the part of the quiz engine a terminal player needs.
type Engine interface {
	StartSession(ctx context.Context, userID string) (domain.Step, error)
	SubmitAnswer(ctx context.Context, userID string, option int) (domain.Step, error)
	Result(ctx context.Context, userID string) (domain.Category, error)
	Quiz() *domain.Quiz
}

// PlayOptions configures a terminal quiz run.
type PlayOptions struct {
	UserID string
	// Answers are 1-based option numbers played without reading Input.
	Answers []int
	Input   io.Reader
	Output  io.Writer
	// Render turns the result markdown into terminal output. Nil prints it raw.
	Render func(string) (string, error)
}

// Play runs one quiz from the first question to the result.
func Play(ctx context.Context, eng Engine, opts PlayOptions) (domain.Category, error) {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	scripted := opts.Answers != nil

	var reader *bufio.Reader
	if !scripted {
		if opts.Input == nil {
			return domain.Category{}, errors.New("play: no input and no scripted answers")
		}
		reader = bufio.NewReader(opts.Input)
	}

	step, err := eng.StartSession(ctx, opts.UserID)
	if err != nil {
		return domain.Category{}, err
	}

	next := 0
	for !step.Completed {
		if err := ctx.Err(); err != nil {
			return domain.Category{}, err
		}
		printQuestion(out, step)

		var choice int
		if scripted {
			if next >= len(opts.Answers) {
				return domain.Category{}, fmt.Errorf("not enough answers: quiz has %d questions, got %d", step.Total, len(opts.Answers))
			}
			choice = opts.Answers[next]
			next++
			fmt.Fprintf(out, "> %d\n", choice)
		} else {
			fmt.Fprint(out, "> ")
			line, err := reader.ReadString('\n')
			if err != nil && strings.TrimSpace(line) == "" {
				return domain.Category{}, err
			}
			choice, err = strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				fmt.Fprintln(out, "Введите номер варианта.")
				continue
			}
		}

		nextStep, err := eng.SubmitAnswer(ctx, opts.UserID, choice-1)
		if errors.Is(err, domain.ErrInvalidOption) {
			fmt.Fprintf(out, "Нет варианта %d, выберите от 1 до %d.\n", choice, len(step.Question.Options))
			if scripted {
				return domain.Category{}, err
			}
			continue
		}
		if err != nil {
			return domain.Category{}, err
		}
		step = nextStep
	}

	c, err := eng.Result(ctx, opts.UserID)
	if err != nil {
		return domain.Category{}, err
	}

	text := tui.ResultMarkdown(eng.Quiz().Brand, c)
	if opts.Render != nil {
		rendered, err := opts.Render(text)
		if err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, text)
	return c, nil
}

func printQuestion(w io.Writer, step domain.Step) {
	fmt.Fprintf(w, "\nВопрос %d/%d: %s\n", step.Index+1, step.Total, step.Question.Text)
	for i, opt := range step.Question.Options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, opt.Text)
	}
}

// ParseAnswers parses a comma separated list of 1-based option numbers.
func ParseAnswers(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	answers := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", p, err)
		}
		answers = append(answers, n)
	}
	return answers, nil
}

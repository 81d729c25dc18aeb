package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/narrate"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

var (
	headerColor = color.New(color.Bold)
	nameColor   = color.New(color.FgCyan, color.Bold)
	proColor    = color.New(color.FgGreen)
	conColor    = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

// AskCmd answers a free-text question.
type AskCmd struct {
	Question []string `arg:"" help:"The question, in plain language"`
	JSON     bool     `help:"Print the whole reply as JSON"`
}

// Run executes the ask command.
func (c *AskCmd) Run(g *Globals, s *Streams) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.svc.Ask(ctx, strings.Join(c.Question, " "))
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(s.Out, reply)
	}
	fmt.Fprintln(s.Out, reply.Text)
	return nil
}

// ClassifyCmd shows the intent of a question without answering it.
type ClassifyCmd struct {
	Question []string `arg:"" help:"The question to classify"`
}

// Run executes the classify command.
func (c *ClassifyCmd) Run(g *Globals, s *Streams) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return printJSON(s.Out, intent.ToWire(a.svc.Classify(ctx, strings.Join(c.Question, " "))))
}

// CounterCmd ranks counter picks against an enemy champion.
type CounterCmd struct {
	Champion string `arg:"" help:"Enemy champion"`
	Lane     string `short:"l" help:"Only consider champions playing this lane"`
	Limit    int    `short:"n" help:"Maximum picks (default from GRAPHLEAGUE_COUNTER_LIMIT)"`
	JSON     bool   `help:"Print the answer as JSON"`
}

// Run executes the counter command.
func (c *CounterCmd) Run(g *Globals, s *Streams) error {
	lane, err := parseLane(c.Lane)
	if err != nil {
		return err
	}
	in, err := intent.NewCounterPick(c.Champion, lane)
	if err != nil {
		return err
	}
	return runDirect(g, s, in, c.Limit, c.JSON)
}

// MechanicCmd lists champions with a mechanic.
type MechanicCmd struct {
	Mechanic string `arg:"" help:"Mechanic name or nickname, e.g. windwall or anti-heal"`
	Lane     string `short:"l" help:"Only consider champions playing this lane"`
	JSON     bool   `help:"Print the answer as JSON"`
}

// Run executes the mechanic command.
func (c *MechanicCmd) Run(g *Globals, s *Streams) error {
	lane, err := parseLane(c.Lane)
	if err != nil {
		return err
	}
	m, err := vocab.NormalizeMechanic(c.Mechanic)
	if err != nil {
		return err
	}
	in, err := intent.NewMechanicSearch(m, lane)
	if err != nil {
		return err
	}
	return runDirect(g, s, in, 0, c.JSON)
}

// ArchetypeCmd lists champions whose archetype counters another.
type ArchetypeCmd struct {
	Archetype string `arg:"" help:"Archetype to counter, e.g. Artillery"`
	Lane      string `short:"l" help:"Only consider champions playing this lane"`
	JSON      bool   `help:"Print the answer as JSON"`
}

// Run executes the archetype command.
func (c *ArchetypeCmd) Run(g *Globals, s *Streams) error {
	lane, err := parseLane(c.Lane)
	if err != nil {
		return err
	}
	arch, err := vocab.NormalizeArchetype(c.Archetype)
	if err != nil {
		return err
	}
	in, err := intent.NewArchetypeCounters(arch, lane)
	if err != nil {
		return err
	}
	return runDirect(g, s, in, 0, c.JSON)
}

// runDirect dispatches an intent built from flags, skipping classification.
func runDirect(g *Globals, s *Streams, in intent.Intent, limit int, asJSON bool) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if limit <= 0 {
		limit = a.cfg.CounterLimit
	}
	answer, err := dispatch.New(a.engine, limit).Dispatch(ctx, in)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(s.Out, answer)
	}
	printAnswer(s.Out, answer)
	return nil
}

func parseLane(s string) (vocab.Role, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return vocab.NormalizeRole(s)
}

func printAnswer(w io.Writer, answer *dispatch.Answer) {
	if answer.Unanswerable {
		fmt.Fprintln(w, narrate.Unanswerable(answer.Reason))
		return
	}

	headerColor.Fprintln(w, answer.Context)
	if answer.Empty() {
		dimColor.Fprintln(w, "  Nothing matches, based on the information available.")
		return
	}

	for i, p := range answer.CounterPicks {
		fmt.Fprintf(w, "%2d. %s  score %d ", i+1, nameColor.Sprint(p.Champion), p.Score)
		dimColor.Fprintf(w, "(offense %d, defense %d)\n", p.Offense, p.Defense)
		for _, r := range p.Pros {
			proColor.Fprintf(w, "      + %s\n", r)
		}
		for _, r := range p.Cons {
			conColor.Fprintf(w, "      - %s\n", r)
		}
	}
	for _, h := range answer.MechanicHolders {
		fmt.Fprintf(w, "  %s: %s\n", nameColor.Sprint(h.Champion), h.Explanation)
	}
	for _, c := range answer.ArchetypeCounters {
		fmt.Fprintf(w, "  %s (%s): %s\n", nameColor.Sprint(c.Champion), c.Archetype, c.Reason)
	}
}

// VocabCmd prints the vocabulary.
type VocabCmd struct {
	JSON bool `help:"Print the vocabulary as JSON"`
}

// Run executes the vocab command.
func (c *VocabCmd) Run(s *Streams) error {
	doc := vocab.NewDocument()
	if c.JSON {
		return printJSON(s.Out, doc)
	}

	headerColor.Fprintln(s.Out, "Roles")
	for _, r := range doc.Roles {
		fmt.Fprintf(s.Out, "  %s\n", r)
	}
	headerColor.Fprintln(s.Out, "\nMechanics")
	for _, m := range doc.Mechanics {
		fmt.Fprintf(s.Out, "  %-18s %s\n", m.Name, dimColor.Sprint(m.Description))
	}
	headerColor.Fprintln(s.Out, "\nArchetypes")
	for _, a := range doc.Archetypes {
		fmt.Fprintf(s.Out, "  %-18s %s\n", a.Name, dimColor.Sprint(a.Description))
	}
	headerColor.Fprintln(s.Out, "\nArchetype counters")
	for _, ac := range doc.ArchetypeCounters {
		fmt.Fprintf(s.Out, "  %s > %s: %s\n", ac.Counter, ac.Target, ac.Reason)
	}
	headerColor.Fprintln(s.Out, "\nImplied weaknesses")
	for _, w := range doc.WeaknessRules {
		fmt.Fprintf(s.Out, "  %s is weak to %s\n", w.Has, w.WeakTo)
	}
	return nil
}

// ChatCmd runs an interactive question loop.
type ChatCmd struct{}

// Run executes the chat command.
func (c *ChatCmd) Run(g *Globals, s *Streams) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return chat(ctx, a, s)
}

func chat(ctx context.Context, a *app, s *Streams) error {
	fmt.Fprintln(s.Out, "Ask about counters, mechanics or archetypes. Type 'exit' to quit.")

	scanner := bufio.NewScanner(s.In)
	for {
		fmt.Fprint(s.Out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(s.Out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(question, "exit") {
			return nil
		}
		if question == "" {
			continue
		}

		reply, err := a.svc.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			conColor.Fprintf(s.Out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(s.Out, "%s %s\n", nameColor.Sprint("GraphLeague:"), reply.Text)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

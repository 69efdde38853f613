package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/totem/pkg/domain"
)

// Overlay contains session progress to visualize on the graph.
type Overlay struct {
	// Answered is the number of questions already answered.
	Answered  int
	Completed bool
	// ResultKey is the category the answers currently resolve to.
	ResultKey string
}

// OverlayFor derives the overlay of a session. traits-free sessions have no result.
func OverlayFor(q *domain.Quiz, s *domain.Session) *Overlay {
	o := &Overlay{
		Answered:  s.CurrentIndex,
		Completed: s.Completed(q.Len()),
	}
	if len(s.Traits) > 0 {
		o.ResultKey = domain.Resolve(q, s.Traits).Key
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the quiz.
// It applies semantic styling:
// - Start and result: ((Circle))
// - Question: [/Parallelogram/]
// - Category: ([Stadium])
// Questions are chained with solid arrows; every option is a dotted arrow
// from its question to each category its traits count towards.
func GenerateMermaid(q *domain.Quiz, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	catIDs := make(map[string]string, len(q.Categories))
	for i, c := range q.Categories {
		catIDs[c.Key] = fmt.Sprintf("c%d", i)
	}

	sb.WriteString("    start((\"start\"))\n")
	prev := "start"
	for i, question := range q.Questions {
		id := questionID(i)
		fmt.Fprintf(&sb, "    %s[/\"%d. %s\"/]\n", id, i+1, escape(question.Text))
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id

		for _, opt := range question.Options {
			for _, trait := range opt.Traits {
				to, ok := catIDs[trait]
				if !ok {
					continue
				}
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", id, escape(opt.Text), to)
			}
		}
	}
	sb.WriteString("    result((\"result\"))\n")
	fmt.Fprintf(&sb, "    %s --> result\n", prev)

	for i, c := range q.Categories {
		fmt.Fprintf(&sb, "    c%d([\"%s\"])\n", i, escape(c.DisplayName()))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		sb.WriteString("    class start visited;\n")
		for i := 0; i < overlay.Answered && i < len(q.Questions); i++ {
			fmt.Fprintf(&sb, "    class %s visited;\n", questionID(i))
		}
		if overlay.Completed {
			sb.WriteString("    class result current;\n")
		} else if overlay.Answered < len(q.Questions) {
			fmt.Fprintf(&sb, "    class %s current;\n", questionID(overlay.Answered))
		}
		if id, ok := catIDs[overlay.ResultKey]; ok {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}

	return sb.String()
}

func questionID(i int) string {
	return fmt.Sprintf("q%d", i)
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

/*
Package totem is a conversational personality quiz engine.

A user answers a fixed sequence of multiple-choice questions; every option carries
trait tags, and once the last question is answered the accumulated tags resolve to a
result Category ("totem animal"). The engine owns the per-user session state machine
and leaves messaging to the host: a Telegram bot, an HTTP API, an MCP server or the
terminal.

# Concept

Each user has one Session: the index of the question awaiting an answer and the
ordered list of collected traits. StartSession always resets it, SubmitAnswer moves it
forward by one question, and Result resolves the category at any point after the first
answer. Sessions are kept in a pluggable store (memory, Redis, SQLite) and every
read-modify-write runs under a per-user lock, so a double tap on a button cannot
answer the same question twice.

# Usage

	eng, err := totem.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	step, _ := eng.StartSession(ctx, "user-42")
	for !step.Completed {
		fmt.Println(step.Question.Text)
		step, err = eng.SubmitAnswer(ctx, "user-42", 0)
		if err != nil {
			log.Fatal(err)
		}
	}

	animal, _ := eng.Result(ctx, "user-42")
	fmt.Println(animal.Name)

# Result resolution

Tags that name a category are counted; the highest count wins. Ties go to the tag
that first appeared earliest in the answers. Without any matching tag the quiz's
default (first listed) category is returned.
*/
package totem

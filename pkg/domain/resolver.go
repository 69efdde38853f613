package domain

// Resolve picks the category voted for most often by traits.
//
// Tags that do not name a category are ignored. When several categories share
// the highest count, the one whose tag first appears earliest in traits wins,
// so the result only depends on the order of the answers.
// With no matching tag the quiz default is returned.
func Resolve(q *Quiz, traits []string) Category {
	counts := make(map[string]int)
	order := make([]string, 0, len(q.Categories))

	for _, tag := range traits {
		if _, ok := q.Category(tag); !ok {
			continue
		}
		if counts[tag] == 0 {
			order = append(order, tag)
		}
		counts[tag]++
	}

	best, bestCount := "", 0
	for _, tag := range order {
		if counts[tag] > bestCount {
			best, bestCount = tag, counts[tag]
		}
	}

	if best == "" {
		return q.Default()
	}
	c, _ := q.Category(best)
	return c
}

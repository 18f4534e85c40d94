package task

// Iterate calls fn for every item tracking the progress on the task. The task is
// checked before every item so a cancelled task stops before touching the next one.
func Iterate[T any](t *Task, items []T, gerund string, fn func(i int, item T) error) error {
	p := t.Progress(len(items), gerund)
	defer p.Done()

	for i, item := range items {
		if err := t.Check(); err != nil {
			return err
		}
		if err := fn(i, item); err != nil {
			return err
		}
		p.Advance()
	}

	return nil
}

package actions

// CompositeExecutor forwards each operation to its members in order.
//
// Dispatch stops at the first member that fails: members after it never receive the call
// and the error is returned unchanged. Members before it have already applied the call.
type CompositeExecutor struct {
	executors []Executor
}

var _ Executor = (*CompositeExecutor)(nil)

// NewCompositeExecutor returns a composite over executors. The list is copied and never mutated.
func NewCompositeExecutor(executors ...Executor) *CompositeExecutor {
	members := make([]Executor, 0, len(executors))
	for _, executor := range executors {
		if executor != nil {
			members = append(members, executor)
		}
	}
	return &CompositeExecutor{executors: members}
}

func (c *CompositeExecutor) Phase(name string) {
	for _, executor := range c.executors {
		executor.Phase(name)
	}
}

func (c *CompositeExecutor) CreateDirectory(path string) error {
	return c.each(func(executor Executor) error {
		return executor.CreateDirectory(path)
	})
}

func (c *CompositeExecutor) CreateFile(path string, content []byte) error {
	return c.each(func(executor Executor) error {
		return executor.CreateFile(path, content)
	})
}

func (c *CompositeExecutor) Run(dir string, command ...string) error {
	return c.each(func(executor Executor) error {
		return executor.Run(dir, command...)
	})
}

func (c *CompositeExecutor) each(op func(Executor) error) error {
	for _, executor := range c.executors {
		if err := op(executor); err != nil {
			return err
		}
	}
	return nil
}

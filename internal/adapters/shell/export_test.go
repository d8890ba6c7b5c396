package shell

// SetEnviron replaces the base environment of the executor.
func (e *Executor) SetEnviron(environ func() []string) {
	e.environ = environ
}

var ResolveEnvironment = resolveEnvironment

package renderer

// Unwind collects cleanups for a multi-step setup. If setup fails, Unwind runs them in
// reverse; once it succeeds, Discard drops them.
type Unwind []func()

func (u *Unwind) Add(cleanup func()) {
	*u = append(*u, cleanup)
}

func (u *Unwind) Unwind() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = nil
}

func (u *Unwind) Discard() {
	*u = nil
}

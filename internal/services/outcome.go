package services

// StoreOutcome tags the result of a best-effort call to the row store so that
// "nothing there" and "store unreachable" stay distinguishable.
type StoreOutcome int

const (
	StoreOK StoreOutcome = iota
	StoreUnavailable
)

func (o StoreOutcome) String() string {
	if o == StoreUnavailable {
		return "store_unavailable"
	}
	return "ok"
}

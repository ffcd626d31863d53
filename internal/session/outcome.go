package session

// outcomeKind tags the result of one monitoring iteration so recovery is
// dispatched from the tag rather than from a blanket recover.
type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeNoData
	outcomeTransportFailed
	outcomeGenerationFailed
	outcomeStoreFailed
)

type outcome struct {
	kind outcomeKind
	err  error
}

func ok() outcome {
	return outcome{kind: outcomeOK}
}

func noData() outcome {
	return outcome{kind: outcomeNoData}
}

func failed(k outcomeKind, err error) outcome {
	return outcome{kind: k, err: err}
}

// failure reports whether the iteration should trigger the error backoff.
func (o outcome) failure() bool {
	return o.kind != outcomeOK && o.kind != outcomeNoData
}

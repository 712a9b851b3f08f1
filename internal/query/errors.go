package query

import "fmt"

// Stages at which a query can fail.
const (
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
)

// QueryError reports a failed article query.
type QueryError struct {
	Stage string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed for query %q: %v", e.Stage, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

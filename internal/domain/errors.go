package domain

import "fmt"

// DatasetLoadError reports a failure fetching or parsing the corpus.
type DatasetLoadError struct {
	Source string
	Err    error
}

func (e *DatasetLoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *DatasetLoadError) Unwrap() error { return e.Err }

// GenerationError reports a failed call to the model endpoint.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate with %s: %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

package tabular

// indicates an upload with no header line at all
type EmptyPayloadError struct{}

func (e EmptyPayloadError) Error() string {
	return "empty tabular payload (no header line)"
}

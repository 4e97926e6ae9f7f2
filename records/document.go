package records

// returns a document's field as a string ("" if absent or not a string)
func stringField(doc Document, key string) string {
	value, _ := doc[key].(string)
	return value
}

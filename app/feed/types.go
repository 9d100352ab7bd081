package feed

// Entry is a single feed item as yielded by the fetcher. Title and Link are
// passed through untouched; trimming and validation happen in the relay.
type Entry struct {
	Title string
	Link  string
}

package streamui

// FragmentKind names the component a fragment was rendered from.
type FragmentKind string

// Generic fragment kinds. Tool packages define their own kinds.
const (
	FragmentText    FragmentKind = "text"
	FragmentLoading FragmentKind = "loading"
	FragmentError   FragmentKind = "error"
)

// Fragment is an opaque renderable UI unit streamed from server to client.
type Fragment struct {
	Kind FragmentKind `json:"kind"`

	// Text is the plain-text payload of the fragment
	Text string `json:"text"`

	// HTML is the rendered markup; the client swaps it in wholesale
	HTML string `json:"html"`
}

// IsZero reports whether the fragment is empty.
func (f Fragment) IsZero() bool {
	return f.Kind == "" && f.Text == "" && f.HTML == ""
}

// Update is one element of a UI stream.
//
// Every stream ends with exactly one Final update. When Err is set the
// stream failed and Fragment is empty.
type Update struct {
	Fragment Fragment
	Final    bool
	Err      error
}

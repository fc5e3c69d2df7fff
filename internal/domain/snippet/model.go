package snippet

// ID identifies a snippet document.
type ID string

// Language values accepted for a snippet.
const (
	JavaScript = "javascript"
	Python     = "python"
	HTML       = "html"
	CSS        = "css"
)

// Languages lists the supported languages in display order.
var Languages = []string{JavaScript, Python, HTML, CSS}

// Snippet is a saved piece of code. It is stored and returned, never run.
type Snippet struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Input carries the editable snippet fields.
type Input struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type document struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

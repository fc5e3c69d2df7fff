package project

// ID identifies a project document.
type ID string

// RefField names a back-reference field on a project.
type RefField string

const (
	QuoteRef    RefField = "quoteId"
	ContractRef RefField = "contractId"
)

// ContractPeriod holds optional YYYY-MM-DD bounds.
type ContractPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Project is a client engagement that quotes and contracts attach to.
type Project struct {
	ID             ID             `json:"id"`
	Name           string         `json:"name"`
	URL            string         `json:"url"`
	Client         string         `json:"client"`
	Active         bool           `json:"active"`
	Notes          string         `json:"notes"`
	Tags           []string       `json:"tags"`
	ContractPeriod ContractPeriod `json:"contractPeriod"`
	QuoteID        string         `json:"quoteId"`
	ContractID     string         `json:"contractId"`
	CreatedAt      string         `json:"createdAt"`
	LastModified   string         `json:"lastModified"`
}

// Reference returns the value of a back-reference field.
func (p Project) Reference(field RefField) string {
	switch field {
	case QuoteRef:
		return p.QuoteID
	case ContractRef:
		return p.ContractID
	}
	return ""
}

// Input carries the editable fields of a project.
type Input struct {
	Name           string         `json:"name"`
	URL            string         `json:"url"`
	Client         string         `json:"client"`
	Active         *bool          `json:"active"`
	Notes          string         `json:"notes"`
	Tags           []string       `json:"tags"`
	ContractPeriod ContractPeriod `json:"contractPeriod"`
}

// document is the stored shape. Pointer fields distinguish absent keys left
// behind by older writers.
type document struct {
	Name           string          `json:"name"`
	URL            string          `json:"url"`
	Client         string          `json:"client"`
	Active         *bool           `json:"active"`
	Notes          string          `json:"notes"`
	Tags           []string        `json:"tags"`
	ContractPeriod *ContractPeriod `json:"contractPeriod"`
	QuoteID        string          `json:"quoteId"`
	ContractID     string          `json:"contractId"`
	CreatedAt      string          `json:"createdAt"`
	LastModified   string          `json:"lastModified"`
}

func (d document) project(id ID) Project {
	p := Project{
		ID:           id,
		Name:         d.Name,
		URL:          d.URL,
		Client:       d.Client,
		Active:       true,
		Notes:        d.Notes,
		Tags:         d.Tags,
		QuoteID:      d.QuoteID,
		ContractID:   d.ContractID,
		CreatedAt:    d.CreatedAt,
		LastModified: d.LastModified,
	}
	if d.Active != nil {
		p.Active = *d.Active
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if d.ContractPeriod != nil {
		p.ContractPeriod = *d.ContractPeriod
	}
	return p
}

func toDocument(p Project) document {
	active := p.Active
	period := p.ContractPeriod
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return document{
		Name:           p.Name,
		URL:            p.URL,
		Client:         p.Client,
		Active:         &active,
		Notes:          p.Notes,
		Tags:           tags,
		ContractPeriod: &period,
		QuoteID:        p.QuoteID,
		ContractID:     p.ContractID,
		CreatedAt:      p.CreatedAt,
		LastModified:   p.LastModified,
	}
}

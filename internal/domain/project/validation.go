package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	dateLayout    = "2006-01-02"
	maxNameLength = 200
)

// normalize trims free-text fields and de-duplicates tags keeping first-seen order.
func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	in.Client = strings.TrimSpace(in.Client)
	in.ContractPeriod.Start = strings.TrimSpace(in.ContractPeriod.Start)
	in.ContractPeriod.End = strings.TrimSpace(in.ContractPeriod.End)

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		tags = AddTag(tags, tag)
	}
	in.Tags = tags
	return in
}

// AddTag appends a trimmed tag unless it is blank or already present.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}

func validateInput(in *Input) error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Name,
			validation.Required.Error("il nome del progetto è obbligatorio"),
			validation.Length(1, maxNameLength),
		),
		validation.Field(&in.URL, is.URL.Error("URL non valido")),
		validation.Field(&in.ContractPeriod),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Validate implements validation.Validatable.
func (cp ContractPeriod) Validate() error {
	return validation.ValidateStruct(&cp,
		validation.Field(&cp.Start, validation.Date(dateLayout).Error("data non valida (AAAA-MM-GG)")),
		validation.Field(&cp.End,
			validation.Date(dateLayout).Error("data non valida (AAAA-MM-GG)"),
			validation.By(cp.endNotBeforeStart),
		),
	)
}

func (cp ContractPeriod) endNotBeforeStart(value interface{}) error {
	end, _ := value.(string)
	if cp.Start == "" || end == "" {
		return nil
	}
	start, err := time.Parse(dateLayout, cp.Start)
	if err != nil {
		return nil
	}
	stop, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil
	}
	if stop.Before(start) {
		return errors.New("la fine del contratto precede l'inizio")
	}
	return nil
}

package domain

import "time"

type Company struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Company) Validate() FieldErrors {
	errs := FieldErrors{}
	if blank(c.Name) {
		errs.Add("name", MsgBlank)
	}
	return errs
}

package domain

import (
	"fmt"
	"strings"
)

type Category struct {
	ID   string        `json:"id" yaml:"id"`
	Name LocalizedText `json:"name" yaml:"name"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: category id required", ErrInvalid)
	}
	return c.Name.validate("name")
}
